package exc

import "fmt"

// Fault is an internal consistency failure. A Fault means the compiler let an
// interval through that validation should have rejected; it is never the
// result of bad user input and is never reported as an Exception.
type Fault struct {
	Message string
}

func (f *Fault) Error() string {
	return "internal fault: " + f.Message
}

func NewFault(format string, args ...any) *Fault {
	return &Fault{Message: fmt.Sprintf(format, args...)}
}
