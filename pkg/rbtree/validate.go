package rbtree

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Validate checks the red-black rules, the binary search tree ordering, the
// parent links and the stored size. Every violation found is returned, combined
// with multierr.
//
// Rule 1 (every node is red or black) holds by construction of Color.
func (tree *Tree[K, V]) Validate() (err error) {
	if tree.leaf.color != Black {
		err = multierr.Append(err, errors.New("rule 3: leaf sentinel is not black"))
	}

	if tree.root == tree.leaf {
		if tree.size != 0 {
			err = multierr.Append(err, errors.Errorf("empty tree reports size %d", tree.size))
		}
		return err
	}

	if tree.root.color != Black {
		err = multierr.Append(err, errors.Errorf("rule 2: root %v is not black", tree.root.key))
	}

	if tree.root.parent != tree.leaf {
		err = multierr.Append(err, errors.Errorf("root %v has a parent", tree.root.key))
	}

	count := 0
	tree.validateNode(tree.root, &err, &count)

	if count != tree.size {
		err = multierr.Append(err, errors.Errorf("tree has %d nodes but reports size %d", count, tree.size))
	}

	return err
}

// validateNode returns the black height of n, counting the leaf sentinel.
func (tree *Tree[K, V]) validateNode(n *Node[K, V], err *error, count *int) int {
	if n == tree.leaf {
		return 1
	}

	*count++

	if n.color == Red && (n.left.color == Red || n.right.color == Red) {
		*err = multierr.Append(*err, errors.Errorf("rule 4: red node %v has a red child", n.key))
	}

	if n.left != tree.leaf {
		if n.left.parent != n {
			*err = multierr.Append(*err, errors.Errorf("left child %v of %v has a wrong parent link", n.left.key, n.key))
		}

		if !(tree.compare(n.key, n.left.key) > 0) {
			*err = multierr.Append(*err, errors.Errorf("left child's key is not less than parent: left = %v, parent = %v", n.left.key, n.key))
		}
	}

	if n.right != tree.leaf {
		if n.right.parent != n {
			*err = multierr.Append(*err, errors.Errorf("right child %v of %v has a wrong parent link", n.right.key, n.key))
		}

		if !(tree.compare(n.key, n.right.key) < 0) {
			*err = multierr.Append(*err, errors.Errorf("right child's key is not greater than parent: right = %v, parent = %v", n.right.key, n.key))
		}
	}

	// the direct child checks above do not catch a key that sits in the wrong
	// sub-tree further down, the neighbors in key order do.
	if prev := tree.predecessorOf(n); prev != tree.leaf && tree.compare(prev.key, n.key) >= 0 {
		*err = multierr.Append(*err, errors.Errorf("keys out of order: %v before %v", prev.key, n.key))
	}

	lh := tree.validateNode(n.left, err, count)
	rh := tree.validateNode(n.right, err, count)
	if lh != rh {
		*err = multierr.Append(*err, errors.Errorf("rule 5: node %v has black heights %d (left) and %d (right)", n.key, lh, rh))
	}

	if n.color == Black {
		return lh + 1
	}

	return lh
}
