package weather

// OperationError is returned by every pipeline stage after the location has been
// read. It is implemented only by *TransportError and *DecodeError.
type OperationError interface {
	error
	operation()
}

// TransportError covers request construction, connection, TLS, DNS and body
// transfer failures, as well as a body that is not valid JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (*TransportError) operation() {}

// DecodeError reports a JSON payload that does not have the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

func (*DecodeError) operation() {}

var (
	_ OperationError = (*TransportError)(nil)
	_ OperationError = (*DecodeError)(nil)
)
