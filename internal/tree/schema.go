package tree

// Caps describes what a label means to the diff algorithms.
type Caps struct {
	// Ordered is set for nodes whose children order is semantically
	// meaningful, e.g., a sequence of activities.
	Ordered bool

	// Property is set for nodes that describe their parent (arguments,
	// endpoints, code snippets...) rather than being steps of a process
	// themselves. Property nodes are matched by key, never by similarity.
	Property bool

	// Code is set for nodes whose text is a script.
	Code bool

	// Leaf is set for activities that never have activity children.
	Leaf bool
}

// Schema maps labels to capabilities.
type Schema struct {
	Labels   map[string]Caps
	Fallback Caps
}

// Caps returns the capabilities for the given label.
func (s *Schema) Caps(label string) Caps {
	if s == nil {
		return Caps{Ordered: true}
	}
	if c, ok := s.Labels[label]; ok {
		return c
	}
	return s.Fallback
}

// Knows tells whether the label has its own entry.
func (s *Schema) Knows(label string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Labels[label]
	return ok
}

// CPEE is the schema for process models in the CPEE description
// language. Any label it doesn't know is taken as a property node.
var CPEE = &Schema{
	Labels: map[string]Caps{
		"description":     {Ordered: true},
		"parallel":        {},
		"parallel_branch": {Ordered: true},
		"choose":          {Ordered: true},
		"alternative":     {Ordered: true},
		"otherwise":       {Ordered: true},
		"loop":            {Ordered: true},
		"critical":        {Ordered: true},
		"call":            {Leaf: true},
		"manipulate":      {Leaf: true, Code: true},
		"stop":            {Leaf: true},
		"escape":          {Leaf: true},
		"terminate":       {Leaf: true},
		"prepare":         {Property: true, Code: true},
		"finalize":        {Property: true, Code: true},
		"update":          {Property: true, Code: true},
		"rescue":          {Property: true, Code: true},
	},
	Fallback: Caps{Property: true},
}

// Generic is a schema without property nodes where every node has
// ordered children. It suits plain XML documents.
var Generic = &Schema{
	Fallback: Caps{Ordered: true},
}
