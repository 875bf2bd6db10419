package rbtree

// Color is the RB Tree color
type Color bool

const (
	Red   = Color(false)
	Black = Color(true)
)

func (c Color) String() string {
	if c == Red {
		return "R"
	}
	return "B"
}

/*
Node
A red node always has black children.
A black node may have red or black children
*/
type Node[K, V any] struct {
	left, right, parent *Node[K, V]
	key                 K
	value               V
	color               Color
}

func (n *Node[K, V]) Key() K {
	return n.key
}

func (n *Node[K, V]) Value() V {
	return n.value
}

// SetValue replaces the value in place; the key, and therefore the position of
// the node, never changes.
func (n *Node[K, V]) SetValue(v V) {
	n.value = v
}

func (n *Node[K, V]) Color() Color {
	return n.color
}

// Left returns the left child, or nil.
func (n *Node[K, V]) Left() *Node[K, V] {
	return n.left.orNil()
}

// Right returns the right child, or nil.
func (n *Node[K, V]) Right() *Node[K, V] {
	return n.right.orNil()
}

// Parent returns the parent, or nil for the root.
func (n *Node[K, V]) Parent() *Node[K, V] {
	return n.parent.orNil()
}

// isSentinel reports whether n is the leaf sentinel of its tree, the only node
// that links to itself.
func (n *Node[K, V]) isSentinel() bool {
	return n.left == n
}

func (n *Node[K, V]) orNil() *Node[K, V] {
	if n == nil || n.isSentinel() {
		return nil
	}
	return n
}
