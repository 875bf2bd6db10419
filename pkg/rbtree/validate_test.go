package rbtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestTree_ValidateDetectsRedRoot(t *testing.T) {
	tree := newIntTree(10, 20, 30)
	require.NoError(t, tree.Validate())

	tree.root.color = Red
	err := tree.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule 2")
	// 20 is now red with two red children
	assert.Contains(t, err.Error(), "rule 4")
	assert.Len(t, multierr.Errors(err), 2)
}

func TestTree_ValidateDetectsBlackHeightMismatch(t *testing.T) {
	tree := newIntTree(10, 20, 30)
	tree.root.left.color = Black

	err := tree.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule 5")
}

func TestTree_ValidateDetectsOrdering(t *testing.T) {
	tree := newIntTree(10, 20, 30)
	tree.root.left.key = 25

	err := tree.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not less than parent")
}

func TestTree_ValidateDetectsBrokenParentLink(t *testing.T) {
	tree := newIntTree(10, 20, 30)
	tree.root.right.parent = tree.root.left

	err := tree.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong parent link")
}

func TestTree_ValidateDetectsSizeMismatch(t *testing.T) {
	tree := newIntTree(10, 20, 30)
	tree.size = 4

	err := tree.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports size 4")
}
