package rbtree

import (
	"cmp"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c9s/ordmap/pkg/types"
)

var log = logrus.WithField("component", "rbtree")

type treeStats struct {
	alloc     int64
	free      int64
	rotations int64
}

// Stats are monotonic counters of a tree's node allocations and rotations.
type Stats struct {
	Alloc     int64 `json:"alloc"`
	Free      int64 `json:"free"`
	Rotations int64 `json:"rotations"`
}

// Live returns the number of nodes that were allocated and not yet released.
func (s Stats) Live() int64 {
	return s.Alloc - s.Free
}

// Tree is a red-black tree ordered by its compare function. Keys are unique.
//
// Tree is not safe for concurrent use, wrap it with SyncTree when it is shared
// between goroutines.
type Tree[K, V any] struct {
	root *Node[K, V]

	// leaf is the black sentinel standing in for every absent child and for the
	// parent of the root. Its left and right links point to itself.
	leaf *Node[K, V]

	size     int
	compare  types.CompareFunc[K]
	nodePool *sync.Pool // pool for Node allocation and reuse

	stats treeStats
}

// New creates a tree ordered by the natural ordering of K.
func New[K cmp.Ordered, V any]() *Tree[K, V] {
	return NewFunc[K, V](types.Ordered[K]())
}

// NewFunc creates a tree ordered by compare.
func NewFunc[K, V any](compare types.CompareFunc[K]) *Tree[K, V] {
	leaf := &Node[K, V]{color: Black}
	leaf.left, leaf.right, leaf.parent = leaf, leaf, leaf

	return &Tree[K, V]{
		root:    leaf,
		leaf:    leaf,
		compare: compare,
		nodePool: &sync.Pool{
			New: func() interface{} {
				return &Node[K, V]{color: Black}
			},
		},
	}
}

func (tree *Tree[K, V]) Size() int {
	return tree.size
}

func (tree *Tree[K, V]) Len() int {
	return tree.size
}

func (tree *Tree[K, V]) IsEmpty() bool {
	return tree.root == tree.leaf
}

// Root returns the root node, or nil when the tree is empty.
func (tree *Tree[K, V]) Root() *Node[K, V] {
	return tree.external(tree.root)
}

func (tree *Tree[K, V]) Stats() Stats {
	return Stats{
		Alloc:     atomic.LoadInt64(&tree.stats.alloc),
		Free:      atomic.LoadInt64(&tree.stats.free),
		Rotations: atomic.LoadInt64(&tree.stats.rotations),
	}
}

// Search returns the node holding key, or nil.
func (tree *Tree[K, V]) Search(key K) *Node[K, V] {
	return tree.external(tree.search(key))
}

func (tree *Tree[K, V]) search(key K) *Node[K, V] {
	var current = tree.root
	for current != tree.leaf {
		c := tree.compare(key, current.key)
		if c == 0 {
			break
		} else if c < 0 {
			current = current.left
		} else {
			current = current.right
		}
	}

	return current
}

func (tree *Tree[K, V]) Get(key K) (V, error) {
	n := tree.search(key)
	if n == tree.leaf {
		var zero V
		return zero, errors.Wrapf(ErrKeyNotFound, "key %v", key)
	}

	return n.value, nil
}

func (tree *Tree[K, V]) Contains(key K) bool {
	return tree.search(key) != tree.leaf
}

// Insert adds key to the tree. It returns ErrDuplicateKey when key is already
// stored, in which case the tree is left untouched.
func (tree *Tree[K, V]) Insert(key K, value V) error {
	parent, found := tree.locate(key)
	if found != nil {
		return errors.Wrapf(ErrDuplicateKey, "key %v", key)
	}

	tree.insertAt(parent, key, value)
	return nil
}

// Upsert stores value under key, replacing the value of an existing key in place.
// It reports whether a new node was inserted.
func (tree *Tree[K, V]) Upsert(key K, value V) bool {
	parent, found := tree.locate(key)
	if found != nil {
		// found node, skip insert and fix
		found.value = value
		return false
	}

	tree.insertAt(parent, key, value)
	return true
}

// locate descends towards key. It returns the node holding key if there is one,
// otherwise the node the new key has to be attached to (the sentinel for an
// empty tree).
func (tree *Tree[K, V]) locate(key K) (parent, found *Node[K, V]) {
	parent = tree.leaf
	x := tree.root
	for x != tree.leaf {
		c := tree.compare(key, x.key)
		if c == 0 {
			return x.parent, x
		}

		parent = x
		if c < 0 {
			x = x.left
		} else {
			x = x.right
		}
	}

	return parent, nil
}

func (tree *Tree[K, V]) insertAt(parent *Node[K, V], key K, value V) *Node[K, V] {
	tree.size++

	if parent == tree.leaf {
		// insert as the root node, the root is always black
		node := tree.newNode(key, value, Black)
		tree.root = node
		return node
	}

	// insert as a child
	node := tree.newNode(key, value, Red)
	node.parent = parent
	if tree.compare(parent.key, key) > 0 {
		parent.left = node
	} else {
		parent.right = node
	}

	tree.insertFixup(node)
	return node
}

func (tree *Tree[K, V]) insertFixup(current *Node[K, V]) {
	// A red node can't have a red parent, we need to fix it up.
	// The root is black, so a red parent always has a parent of its own.
	for current.parent.color == Red {
		if current.parent == current.parent.parent.left {
			uncle := current.parent.parent.right
			if uncle.color == Red {
				current.parent.color = Black
				uncle.color = Black
				current.parent.parent.color = Red
				current = current.parent.parent
			} else { // if uncle is black
				if current == current.parent.right {
					current = current.parent
					tree.rotateLeft(current)
				}

				current.parent.color = Black
				current.parent.parent.color = Red
				tree.rotateRight(current.parent.parent)
			}
		} else {
			uncle := current.parent.parent.left
			if uncle.color == Red {
				current.parent.color = Black
				uncle.color = Black
				current.parent.parent.color = Red
				current = current.parent.parent
			} else {
				if current == current.parent.left {
					current = current.parent
					tree.rotateRight(current)
				}

				current.parent.color = Black
				current.parent.parent.color = Red
				tree.rotateLeft(current.parent.parent)
			}
		}
	}

	// ensure that root is black
	tree.root.color = Black
}

// Delete removes key from the tree, it returns ErrKeyNotFound if key is absent.
func (tree *Tree[K, V]) Delete(key K) error {
	deleting := tree.search(key)
	if deleting == tree.leaf {
		return errors.Wrapf(ErrKeyNotFound, "key %v", key)
	}

	tree.deleteNode(deleting)
	return nil
}

func (tree *Tree[K, V]) deleteNode(deleting *Node[K, V]) {
	// removing is the node that is physically unlinked from the tree.
	removing := deleting

	// if both children are not nil, we need to find the successor from the right subtree
	// and copy the successor to the memory location of the deleting node.
	// the successor is the leftmost node of the right subtree, so it has no left child.
	if deleting.left != tree.leaf && deleting.right != tree.leaf {
		removing = tree.leftmostOf(deleting.right)
		deleting.key = removing.key
		deleting.value = removing.value
	}

	// x the child of the removed node, it could be the sentinel
	var x *Node[K, V]
	if removing.left != tree.leaf {
		x = removing.left
	} else {
		x = removing.right
	}

	wasBlack := removing.color == Black
	p := removing.parent

	tree.transplant(removing, x)
	tree.release(removing)
	tree.size--

	if wasBlack {
		if err := tree.deleteFixup(x); err != nil {
			log.WithError(err).Errorf("delete fixup error, x = %+v", x.key)
			if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
				log.Debugf("subtree:\n%s", tree.sprintSubTree(p))
			}
		}
	}

	// the fixup may have borrowed the sentinel's parent link
	tree.leaf.parent = tree.leaf
}

// transplant replaces sub-tree rooted at u with subtree rooted at v.
// v may be the sentinel, whose parent link is then set for the delete fixup.
func (tree *Tree[K, V]) transplant(u, v *Node[K, V]) {
	if u.parent == tree.leaf {
		tree.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}

	v.parent = u.parent
}

func (tree *Tree[K, V]) deleteFixup(current *Node[K, V]) error {
	for current != tree.root && current.color == Black {
		if current == current.parent.left {
			sibling := current.parent.right
			if sibling == tree.leaf {
				return errors.Errorf("double black node %v has no sibling", current.key)
			}

			if sibling.color == Red {
				sibling.color = Black
				current.parent.color = Red
				tree.rotateLeft(current.parent)
				sibling = current.parent.right
			}

			// if both are black nodes
			if sibling.left.color == Black && sibling.right.color == Black {
				sibling.color = Red
				current = current.parent
			} else {
				// only one of the child is black
				if sibling.right.color == Black {
					sibling.left.color = Black
					sibling.color = Red
					tree.rotateRight(sibling)
					sibling = current.parent.right
				}

				sibling.color = current.parent.color
				current.parent.color = Black
				sibling.right.color = Black
				tree.rotateLeft(current.parent)
				current = tree.root
			}
		} else { // if current is right child
			sibling := current.parent.left
			if sibling == tree.leaf {
				return errors.Errorf("double black node %v has no sibling", current.key)
			}

			if sibling.color == Red {
				sibling.color = Black
				current.parent.color = Red
				tree.rotateRight(current.parent)
				sibling = current.parent.left
			}

			if sibling.left.color == Black && sibling.right.color == Black {
				sibling.color = Red
				current = current.parent
			} else { // if only one of child is Black
				// the left child of sibling is black, and right child is red
				if sibling.left.color == Black {
					sibling.right.color = Black
					sibling.color = Red
					tree.rotateLeft(sibling)
					sibling = current.parent.left
				}

				sibling.color = current.parent.color
				current.parent.color = Black
				sibling.left.color = Black
				tree.rotateRight(current.parent)
				current = tree.root
			}
		}
	}

	current.color = Black
	return nil
}

// rotateLeft
// x is the axes of rotation, y is the node that will be replace x's position.
// we need to:
// 1. move y's left child to the x's right child
// 2. change y's parent to x's parent
// 3. change x's parent to y
func (tree *Tree[K, V]) rotateLeft(x *Node[K, V]) {
	var y = x.right
	x.right = y.left

	if y.left != tree.leaf {
		y.left.parent = x
	}

	y.parent = x.parent

	if x.parent == tree.leaf {
		tree.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}

	y.left = x
	x.parent = y
	atomic.AddInt64(&tree.stats.rotations, 1)
}

func (tree *Tree[K, V]) rotateRight(y *Node[K, V]) {
	x := y.left
	y.left = x.right

	if x.right != tree.leaf {
		x.right.parent = y
	}

	x.parent = y.parent

	if y.parent == tree.leaf {
		tree.root = x
	} else if y == y.parent.left {
		y.parent.left = x
	} else {
		y.parent.right = x
	}

	x.right = y
	y.parent = x
	atomic.AddInt64(&tree.stats.rotations, 1)
}

// Min returns the node with the smallest key.
func (tree *Tree[K, V]) Min() (*Node[K, V], error) {
	if tree.IsEmpty() {
		return nil, ErrEmptyTree
	}

	return tree.leftmostOf(tree.root), nil
}

// Max returns the node with the largest key.
func (tree *Tree[K, V]) Max() (*Node[K, V], error) {
	if tree.IsEmpty() {
		return nil, ErrEmptyTree
	}

	return tree.rightmostOf(tree.root), nil
}

func (tree *Tree[K, V]) Rightmost() *Node[K, V] {
	return tree.external(tree.rightmostOf(tree.root))
}

func (tree *Tree[K, V]) Leftmost() *Node[K, V] {
	return tree.external(tree.leftmostOf(tree.root))
}

func (tree *Tree[K, V]) rightmostOf(current *Node[K, V]) *Node[K, V] {
	for current.right != tree.leaf {
		current = current.right
	}

	return current
}

func (tree *Tree[K, V]) leftmostOf(current *Node[K, V]) *Node[K, V] {
	for current.left != tree.leaf {
		current = current.left
	}

	return current
}

// Successor returns the node with the next larger key, or nil when n holds the
// maximum.
//
// n must be a node of this tree. A node goes stale once Delete removes its key
// (or the key of its successor), Successor returns nil for stale and foreign
// nodes.
func (tree *Tree[K, V]) Successor(n *Node[K, V]) *Node[K, V] {
	if n == nil || !tree.owns(n) {
		return nil
	}

	return tree.external(tree.successorOf(n))
}

// Predecessor returns the node with the next smaller key, or nil when n holds
// the minimum. Stale and foreign nodes give nil, as in Successor.
func (tree *Tree[K, V]) Predecessor(n *Node[K, V]) *Node[K, V] {
	if n == nil || !tree.owns(n) {
		return nil
	}

	return tree.external(tree.predecessorOf(n))
}

// owns reports whether n is linked under the root of this tree.
func (tree *Tree[K, V]) owns(n *Node[K, V]) bool {
	if n == tree.leaf {
		return false
	}

	for n.parent != tree.leaf {
		// released nodes have no parent, a foreign sentinel links to itself
		if n.parent == nil || n.parent == n {
			return false
		}
		n = n.parent
	}

	return n == tree.root
}

func (tree *Tree[K, V]) successorOf(current *Node[K, V]) *Node[K, V] {
	if current.right != tree.leaf {
		return tree.leftmostOf(current.right)
	}

	// otherwise walk up until we find a node that is a left child of its parent
	var suc = current.parent
	for suc != tree.leaf && current == suc.right {
		current = suc
		suc = suc.parent
	}

	return suc
}

func (tree *Tree[K, V]) predecessorOf(current *Node[K, V]) *Node[K, V] {
	if current.left != tree.leaf {
		return tree.rightmostOf(current.left)
	}

	var pred = current.parent
	for pred != tree.leaf && current == pred.left {
		current = pred
		pred = pred.parent
	}

	return pred
}

// Floor returns the node with the greatest key less than or equal to key.
func (tree *Tree[K, V]) Floor(key K) *Node[K, V] {
	return tree.external(tree.floor(key))
}

func (tree *Tree[K, V]) floor(key K) *Node[K, V] {
	var found = tree.leaf
	for x := tree.root; x != tree.leaf; {
		c := tree.compare(key, x.key)
		if c == 0 {
			return x
		} else if c < 0 {
			x = x.left
		} else {
			found = x
			x = x.right
		}
	}

	return found
}

// Ceiling returns the node with the least key greater than or equal to key.
func (tree *Tree[K, V]) Ceiling(key K) *Node[K, V] {
	return tree.external(tree.ceiling(key))
}

func (tree *Tree[K, V]) ceiling(key K) *Node[K, V] {
	var found = tree.leaf
	for x := tree.root; x != tree.leaf; {
		c := tree.compare(key, x.key)
		if c == 0 {
			return x
		} else if c > 0 {
			x = x.right
		} else {
			found = x
			x = x.left
		}
	}

	return found
}

// Height returns the number of edges on the longest path from the root to a
// leaf. Empty and single-node trees have height 0.
func (tree *Tree[K, V]) Height() int {
	return max(tree.heightOf(tree.root), 0)
}

func (tree *Tree[K, V]) heightOf(n *Node[K, V]) int {
	if n == tree.leaf {
		return -1
	}

	return 1 + max(tree.heightOf(n.left), tree.heightOf(n.right))
}

// BlackHeight returns the number of black nodes on any path from the root
// (exclusive) down to a leaf sentinel (inclusive). It is 0 for an empty tree.
func (tree *Tree[K, V]) BlackHeight() int {
	if tree.root == tree.leaf {
		return 0
	}

	height := 0
	for n := tree.root.left; ; n = n.left {
		if n.color == Black {
			height++
		}

		if n == tree.leaf {
			return height
		}
	}
}

// Clear destroys the tree, all nodes are released to the pool.
func (tree *Tree[K, V]) Clear() {
	tree.clear(tree.root)
	tree.root = tree.leaf
	tree.leaf.parent = tree.leaf
	tree.size = 0
}

// clear releases the sub-tree rooted at n to the pool, children first.
func (tree *Tree[K, V]) clear(n *Node[K, V]) {
	if n == tree.leaf {
		return
	}

	tree.clear(n.left)
	tree.clear(n.right)
	tree.release(n)
}

func (tree *Tree[K, V]) CopyInorderReverse(limit int) *Tree[K, V] {
	newTree := NewFunc[K, V](tree.compare)
	tree.InorderReverse(copyNodeLimit(newTree, limit))
	return newTree
}

func (tree *Tree[K, V]) CopyInorder(limit int) *Tree[K, V] {
	newTree := NewFunc[K, V](tree.compare)
	tree.Inorder(copyNodeLimit(newTree, limit))
	return newTree
}

// copyNodeLimit copies at most limit nodes into newTree, a zero limit copies all.
func copyNodeLimit[K, V any](newTree *Tree[K, V], limit int) func(n *Node[K, V]) bool {
	cnt := 0
	return func(n *Node[K, V]) bool {
		if limit > 0 && cnt >= limit {
			return false
		}

		newTree.Upsert(n.key, n.value)
		cnt++
		return true
	}
}

func (tree *Tree[K, V]) newNode(key K, value V, color Color) *Node[K, V] {
	n := tree.nodePool.Get().(*Node[K, V])
	n.left = tree.leaf
	n.right = tree.leaf
	n.parent = tree.leaf
	n.key = key
	n.value = value
	n.color = color
	atomic.AddInt64(&tree.stats.alloc, 1)
	return n
}

// release returns the node to the pool
func (tree *Tree[K, V]) release(n *Node[K, V]) {
	var zeroKey K
	var zeroValue V

	n.left = nil
	n.right = nil
	n.parent = nil
	n.key = zeroKey
	n.value = zeroValue
	n.color = Black
	tree.nodePool.Put(n)
	atomic.AddInt64(&tree.stats.free, 1)
}

// external maps the sentinel to nil for callers outside of the package.
func (tree *Tree[K, V]) external(n *Node[K, V]) *Node[K, V] {
	if n == tree.leaf {
		return nil
	}

	return n
}
