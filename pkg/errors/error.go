package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// StoreWriteError represents an I/O failure while appending rows to the event store.
	// The write is abandoned and ingestion continues with the next message.
	StoreWriteError ErrorCode = "store_write_error"
	// NoPartitionError represents the absence of any day partition in the store.
	// Read paths treat it as an empty result; administrative paths may surface it.
	NoPartitionError ErrorCode = "no_partition_error"
	// MalformedMessageError represents a decoding or shape failure on one inbound
	// transport message. The message is dropped and the ingestion loop continues.
	MalformedMessageError ErrorCode = "malformed_message_error"
	// UpstreamSubscribeError represents a failed subscribe command for one symbol.
	// The symbol is retried on the next synchronizer cycle.
	UpstreamSubscribeError ErrorCode = "upstream_subscribe_error"
)

// CodedError is an `error` carrying an ErrorCode and an optional underlying cause.
type CodedError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewCodedError creates a CodedError with the given code and message.
func NewCodedError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// WrapCoded wraps an existing error with an ErrorCode, preserving the cause.
func WrapCoded(code ErrorCode, message string, err error) *CodedError {
	return &CodedError{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *CodedError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the ErrorCode from err, walking the unwrap chain.
// It returns GeneralInternalServerError when no code is attached.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if coded, ok := err.(*CodedError); ok {
			return coded.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return GeneralInternalServerError
		}
		err = unwrapper.Unwrap()
	}
	return GeneralInternalServerError
}

// HasCode checks whether a given `error` carries a specific code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
