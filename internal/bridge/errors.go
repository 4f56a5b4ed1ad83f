package bridge

import (
	"errors"
	"fmt"
)

// ErrUnsuccessful means the bridge answered without a fault but did not
// report success either.
var ErrUnsuccessful = errors.New("bridge did not report success")

// Fault is a fault declared by the bridge.
type Fault struct {
	Code   int
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%d %s", f.Code, f.String)
}

// TransportError is a failure below the RPC layer: the connection, the HTTP
// exchange or the XML document itself. Code carries the HTTP status when the
// bridge answered with one, otherwise 0.
type TransportError struct {
	Code    int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsFault reports whether err carries a bridge fault and returns it.
func IsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
