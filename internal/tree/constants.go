package tree

// baseError is an error type to be used when a stack trace is not required or would be confusing.
type baseErr string

// Error implements error.
func (e baseErr) Error() string {
	return string(e)
}

// TextKey is the key under which text changes are recorded in a node's
// update map. It can't clash with an XML attribute name.
const TextKey = "#text"

var (
	// ErrInvalidTree is returned when an index path does not resolve
	// to a node, e.g., an edit script is applied to a tree it was not
	// computed from.
	ErrInvalidTree = baseErr("invalid tree")
)
