package rbtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	redNodeColor   = color.New(color.FgHiRed, color.Bold)
	blackNodeColor = color.New(color.FgHiWhite)
)

// Fprint writes the graph of the tree to w, the right sub-tree is printed above
// the left one.
func (tree *Tree[K, V]) Fprint(w io.Writer) error {
	_, err := io.WriteString(w, tree.sprintSubTree(tree.root))
	return err
}

func (tree *Tree[K, V]) String() string {
	return tree.sprintSubTree(tree.root)
}

func (tree *Tree[K, V]) sprintSubTree(node *Node[K, V]) string {
	if node == nil || node == tree.leaf {
		return "<empty>\n"
	}

	var sb strings.Builder
	tree.printSubTree(&sb, node, "", true)
	return sb.String()
}

func (tree *Tree[K, V]) printSubTree(sb *strings.Builder, node *Node[K, V], prefix string, isTail bool) {
	if node == tree.leaf {
		fmt.Fprintf(sb, "%s%s── ·\n", prefix, getBranch(isTail))
		return
	}

	label := fmt.Sprintf("%v(%s)", node.key, node.color)
	if node.color == Red {
		label = redNodeColor.Sprint(label)
	} else {
		label = blackNodeColor.Sprint(label)
	}

	fmt.Fprintf(sb, "%s%s── %s\n", prefix, getBranch(isTail), label)

	newPrefix := prefix + getIndent(isTail)
	if node.left != tree.leaf || node.right != tree.leaf {
		tree.printSubTree(sb, node.right, newPrefix, false)
		tree.printSubTree(sb, node.left, newPrefix, true)
	}
}

func getBranch(isTail bool) string {
	if isTail {
		return "└"
	}
	return "├"
}

func getIndent(isTail bool) string {
	if isTail {
		return "   "
	}
	return "│  "
}
