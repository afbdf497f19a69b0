package topofbook

// TopOfBook is one observed trade/reference update for an instrument.
// Any subset of the value fields may be nil; rows with all three nil are
// only ever written as activation placeholders.
type TopOfBook struct {
	Symbol          string
	Ts              int64
	LastPrice       *float64
	LastSize        *float64
	UnderlyingPrice *float64
}

// HasValues reports whether at least one value field is present.
func (t *TopOfBook) HasValues() bool {
	return t.LastPrice != nil || t.LastSize != nil || t.UnderlyingPrice != nil
}
