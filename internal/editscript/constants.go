package editscript

// baseError is an error type to be used when a stack trace is not required or would be confusing.
type baseErr string

// Error implements error.
func (e baseErr) Error() string {
	return string(e)
}

// ErrPhase indicates that the caller didn't use this package as
// intended, e.g., passed a matching that doesn't pair the roots.
const ErrPhase = baseErr("phase error")
