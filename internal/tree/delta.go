package tree

import "fmt"

// ChangeType tags a node of a delta tree with the change it underwent.
type ChangeType uint8

const (
	Nil ChangeType = iota
	Insertion
	SubtreeInsertion
	Deletion
	SubtreeDeletion
	MoveTo
	MoveFrom
	Updated
	Reshuffle
)

var changeTypeNames = [...]string{
	Nil:              "NIL",
	Insertion:        "INSERTION",
	SubtreeInsertion: "SUBTREE_INSERTION",
	Deletion:         "DELETION",
	SubtreeDeletion:  "SUBTREE_DELETION",
	MoveTo:           "MOVE_TO",
	MoveFrom:         "MOVE_FROM",
	Updated:          "UPDATE",
	Reshuffle:        "RESHUFFLE",
}

func (t ChangeType) String() string {
	if int(t) < len(changeTypeNames) {
		return changeTypeNames[t]
	}
	return fmt.Sprintf("ChangeType(%d)", uint8(t))
}

// Update holds the old and new value of an attribute or of the text.
// A nil value means absent.
type Update struct {
	Old *string
	New *string
}

// Confidence reports which aspects of a merged node are certain.
type Confidence struct {
	Position bool
	Parent   bool
	Content  bool
}

func (node *Node) Change() ChangeType {
	return node.change
}

func (node *Node) SetChange(t ChangeType) {
	node.change = t
}

func (node *Node) IsInsertion() bool {
	return node.change == Insertion || node.change == SubtreeInsertion
}

func (node *Node) IsDeletion() bool {
	return node.change == Deletion || node.change == SubtreeDeletion
}

// IsMove is true for nodes moved to a new parent or reordered.
func (node *Node) IsMove() bool {
	return node.change == MoveTo || node.change == Reshuffle
}

func (node *Node) IsMovedFrom() bool {
	return node.change == MoveFrom
}

// IsUpdate tells whether the node records content changes, whatever
// its change type.
func (node *Node) IsUpdate() bool {
	return len(node.updates) > 0
}

// Updates returns the recorded content changes keyed by attribute name,
// or TextKey for the text. The caller must not modify the map.
func (node *Node) Updates() map[string]Update {
	return node.updates
}

func (node *Node) SetUpdate(key string, u Update) {
	if node.updates == nil {
		node.updates = make(map[string]Update)
	}
	node.updates[key] = u
}

func (node *Node) ClearUpdates() {
	node.updates = nil
}

// Base returns the preorder index of the base tree node this node
// derives from.
func (node *Node) Base() (int, bool) {
	return node.base - 1, node.base != 0
}

func (node *Node) SetBase(id int) {
	node.base = id + 1
}

// Origin identifies the branch a change comes from during a merge: 1
// or 2 for either branch, 3 once both branches were reconciled.
func (node *Node) Origin() int {
	return node.origin
}

func (node *Node) SetOrigin(origin int) {
	node.origin = origin
}

func (node *Node) Confidence() Confidence {
	return Confidence{
		Position: node.flags&positionDoubt == 0,
		Parent:   node.flags&parentDoubt == 0,
		Content:  node.flags&contentDoubt == 0,
	}
}

func (node *Node) DoubtPosition() {
	node.flags |= positionDoubt
}

func (node *Node) DoubtParent() {
	node.flags |= parentDoubt
}

func (node *Node) DoubtContent() {
	node.flags |= contentDoubt
}

// Placeholders returns detached nodes kept at the positions they had,
// such as deleted subtrees and the sources of moves.
func (node *Node) Placeholders() []*Node {
	return node.placeholders
}

// AddPlaceholder attaches p as a placeholder that remembers its current
// index. If p is still a child somewhere, it's detached first.
func (node *Node) AddPlaceholder(p *Node) {
	i := p.index
	if p.parent != nil {
		p.RemoveFromParent()
	}
	p.index = i
	p.parent = node
	node.placeholders = append(node.placeholders, p)
}

// PopPlaceholder removes and returns the most recent placeholder.
func (node *Node) PopPlaceholder() *Node {
	n := len(node.placeholders)
	if n == 0 {
		return nil
	}
	p := node.placeholders[n-1]
	node.placeholders = node.placeholders[:n-1]
	p.parent = nil
	return p
}

// StripAnnotations clears change bookkeeping from the whole subtree,
// keeping only the confidence flags.
func (node *Node) StripAnnotations() {
	for _, n := range node.PreOrder() {
		n.change = Nil
		n.updates = nil
		n.placeholders = nil
		n.base = 0
		n.origin = 0
	}
}
