package match

// baseError is an error type to be used when a stack trace is not required or would be confusing.
type baseErr string

// Error implements error.
func (e baseErr) Error() string {
	return string(e)
}

// DefaultThreshold is the minimum comparator score for two nodes to be
// considered similar.
const DefaultThreshold = 0.4

var (
	// ErrAlreadyMatched is returned when a node would get a second
	// partner. Matchings are strictly one-to-one.
	ErrAlreadyMatched = baseErr("already matched")

	// ErrUnsupportedComparison is returned when the comparator is asked
	// to score nodes it has no policy for: property nodes (matched by
	// key) and transient alignment nodes.
	ErrUnsupportedComparison = baseErr("unsupported comparison")
)
