package bst

import (
	"iter"

	"github.com/c9s/ordmap/pkg/types"
)

// Traverse yields the key/value pairs in the given order. Every range over the
// returned sequence starts from the root again.
func (t *Tree[K, V]) Traverse(order types.Order) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if t.root == nil {
			return
		}

		switch order {
		case types.PreOrder:
			preorder(t.root, yield)
		case types.PostOrder:
			postorder(t.root, yield)
		case types.LevelOrder:
			levelorder(t.root, yield)
		default:
			inorder(t.root, yield)
		}
	}
}

func inorder[K, V any](root *Node[K, V], yield func(K, V) bool) {
	var stack []*Node[K, V]
	node := root
	for node != nil || len(stack) > 0 {
		for node != nil {
			stack = append(stack, node)
			node = node.left
		}

		node = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !yield(node.key, node.value) {
			return
		}

		node = node.right
	}
}

func preorder[K, V any](root *Node[K, V], yield func(K, V) bool) {
	stack := []*Node[K, V]{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !yield(node.key, node.value) {
			return
		}

		if node.right != nil {
			stack = append(stack, node.right)
		}
		if node.left != nil {
			stack = append(stack, node.left)
		}
	}
}

// postorder emits the reverse of a root-right-left walk.
func postorder[K, V any](root *Node[K, V], yield func(K, V) bool) {
	var out []*Node[K, V]
	stack := []*Node[K, V]{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, node)

		if node.left != nil {
			stack = append(stack, node.left)
		}
		if node.right != nil {
			stack = append(stack, node.right)
		}
	}

	for i := len(out) - 1; i >= 0; i-- {
		if !yield(out[i].key, out[i].value) {
			return
		}
	}
}

func levelorder[K, V any](root *Node[K, V], yield func(K, V) bool) {
	queue := []*Node[K, V]{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if !yield(node.key, node.value) {
			return
		}

		if node.left != nil {
			queue = append(queue, node.left)
		}
		if node.right != nil {
			queue = append(queue, node.right)
		}
	}
}
