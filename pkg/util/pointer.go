package util

// Float64Ptr converts a float64 to a pointer.
func Float64Ptr(f float64) *float64 {
	return &f
}
