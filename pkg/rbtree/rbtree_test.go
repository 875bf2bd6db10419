package rbtree

import (
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/ordmap/pkg/types"
)

func newIntTree(keys ...int) *Tree[int, int] {
	tree := New[int, int]()
	for _, k := range keys {
		tree.Upsert(k, k*10)
	}
	return tree
}

func TestTree_ConcurrentIndependence(t *testing.T) {
	// each Tree instances must not affect each other in concurrent environment
	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			tree := New[int64, int64]()
			for stepCnt := 0; stepCnt < 20_000; stepCnt++ {
				switch opCode := rnd.Intn(2); opCode {
				case 0:
					_ = tree.Delete(rnd.Int63n(16))
				case 1:
					tree.Upsert(rnd.Int63n(16), rnd.Int63n(8))
				}
			}
			assert.NoError(t, tree.Validate())
		}(int64(w))
	}
	wg.Wait()
}

func TestTree_InsertAndDelete(t *testing.T) {
	tree := New[int, int]()
	node := tree.Rightmost()
	assert.Nil(t, node)

	for _, k := range []int{10, 9, 12, 11, 13} {
		require.NoError(t, tree.Insert(k, k))
	}

	node = tree.Rightmost()
	assert.Equal(t, 13, node.Key())
	assert.Equal(t, 13, node.Value())

	err := tree.Delete(12)
	assert.NoError(t, err, "should delete the node successfully")
	assert.Nil(t, tree.Search(12))
	assert.Equal(t, 4, tree.Size())
	assert.NoError(t, tree.Validate())
}

func TestTree_Rightmost(t *testing.T) {
	tree := New[int, int]()
	node := tree.Rightmost()
	assert.Nil(t, node, "should be nil")

	require.NoError(t, tree.Insert(10, 10))
	node = tree.Rightmost()
	assert.Equal(t, 10, node.Key())

	require.NoError(t, tree.Insert(12, 12))
	require.NoError(t, tree.Insert(9, 9))
	node = tree.Rightmost()
	assert.Equal(t, 12, node.Key())

	node = tree.Leftmost()
	assert.Equal(t, 9, node.Key())
}

func TestTree_MinMax(t *testing.T) {
	tree := New[int, int]()

	_, err := tree.Min()
	assert.True(t, errors.Is(err, ErrEmptyTree))

	_, err = tree.Max()
	assert.True(t, errors.Is(err, ErrEmptyTree))

	tree = newIntTree(5, 3, 8, 1)

	min, err := tree.Min()
	require.NoError(t, err)
	assert.Equal(t, 1, min.Key())

	max, err := tree.Max()
	require.NoError(t, err)
	assert.Equal(t, 8, max.Key())
}

func TestTree_InsertDuplicate(t *testing.T) {
	tree := newIntTree(1, 2, 3)

	err := tree.Insert(2, 99)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Equal(t, 3, tree.Size())

	v, err := tree.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 20, v, "value must not be replaced by a failed insert")

	inserted := tree.Upsert(2, 99)
	assert.False(t, inserted)
	v, _ = tree.Get(2)
	assert.Equal(t, 99, v)
	assert.Equal(t, 3, tree.Size())

	inserted = tree.Upsert(4, 40)
	assert.True(t, inserted)
	assert.Equal(t, 4, tree.Size())
}

func TestTree_LeftRotationOnAscendingInsert(t *testing.T) {
	tree := New[int, string]()
	require.NoError(t, tree.Insert(10, "a"))
	require.NoError(t, tree.Insert(20, "b"))
	require.NoError(t, tree.Insert(30, "c"))

	root := tree.Root()
	require.NotNil(t, root)
	assert.Equal(t, 20, root.Key())
	assert.Equal(t, Black, root.Color())
	assert.Nil(t, root.Parent())

	require.NotNil(t, root.Left())
	require.NotNil(t, root.Right())
	assert.Equal(t, 10, root.Left().Key())
	assert.Equal(t, 30, root.Right().Key())
	// the case 3 recoloring makes the old parent black and the old grandparent
	// red before the rotation, so both children end up red
	assert.Equal(t, Red, root.Left().Color())
	assert.Equal(t, Red, root.Right().Color())
	assert.Nil(t, root.Left().Left())
	assert.Equal(t, root, root.Right().Parent())

	assert.Equal(t, int64(1), tree.Stats().Rotations)
	assert.Equal(t, 1, tree.Height())
	assert.NoError(t, tree.Validate())
}

func TestTree_DeleteSingleRoot(t *testing.T) {
	tree := newIntTree(42)
	require.NoError(t, tree.Delete(42))

	assert.True(t, tree.IsEmpty())
	assert.Equal(t, 0, tree.Size())
	assert.Nil(t, tree.Root())
	assert.Nil(t, tree.Search(42))
	assert.Nil(t, tree.Search(7))

	_, err := tree.Get(42)
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	err = tree.Delete(42)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
	assert.NoError(t, tree.Validate())
}

func TestTree_SortedInsertHeight(t *testing.T) {
	tree := newIntTree(1, 2, 3, 4, 5, 6, 7)
	assert.LessOrEqual(t, tree.Height(), 3)
	assert.Equal(t, 2, tree.Root().Key())
	assert.Equal(t, int64(3), tree.Stats().Rotations)
	assert.NoError(t, tree.Validate())
}

func TestTree_HeightBound(t *testing.T) {
	for _, n := range []int{1, 2, 10, 100, 1000, 5000} {
		ascending := New[int, struct{}]()
		random := New[int, struct{}]()
		rnd := rand.New(rand.NewSource(int64(n)))
		for i := 0; i < n; i++ {
			ascending.Upsert(i, struct{}{})
			random.Upsert(rnd.Int(), struct{}{})
		}

		bound := 2 * math.Log2(float64(n+1))
		assert.LessOrEqual(t, float64(ascending.Height()), bound, "ascending n=%d", n)
		assert.LessOrEqual(t, float64(random.Height()), bound, "random n=%d", n)
	}
}

func TestTree_RandomInsertSearchAndDelete(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	tree := New[float64, float64]()

	var keys []float64
	for i := 1; i < 10_000; i++ {
		v := rnd.Float64()*100 + 1.0
		if tree.Upsert(v, v) {
			keys = append(keys, v)
		}
	}
	require.NoError(t, tree.Validate())

	for i, key := range keys {
		node := tree.Search(key)
		require.NotNil(t, node)

		err := tree.Delete(key)
		require.NoError(t, err, "should find and delete the node")
		assert.Nil(t, tree.Search(key))

		if i%500 == 0 {
			require.NoError(t, tree.Validate())
		}
	}

	assert.True(t, tree.IsEmpty())
	assert.Equal(t, int64(0), tree.Stats().Live())
}

// TestTree_RandomOperations checks the invariants after every single mutation,
// against a plain map as the model.
func TestTree_RandomOperations(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	tree := New[int, int]()
	model := map[int]int{}

	for step := 0; step < 3000; step++ {
		key := rnd.Intn(200)
		switch rnd.Intn(3) {
		case 0, 1:
			_, exists := model[key]
			inserted := tree.Upsert(key, step)
			assert.Equal(t, !exists, inserted)
			model[key] = step
		case 2:
			err := tree.Delete(key)
			if _, exists := model[key]; exists {
				require.NoError(t, err)
				delete(model, key)
			} else {
				require.True(t, errors.Is(err, ErrKeyNotFound))
			}
		}

		require.NoError(t, tree.Validate(), "step %d", step)
		require.Equal(t, len(model), tree.Size())
	}

	for key, value := range model {
		v, err := tree.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, v)
	}

	var keys []int
	for k := range tree.Keys(types.InOrder) {
		keys = append(keys, k)
	}
	assert.True(t, slices.IsSorted(keys))
	assert.Len(t, keys, len(model))
}

func TestTree_SuccessorAndPredecessor(t *testing.T) {
	keys := []int{50, 30, 70, 20, 40, 60, 80, 35, 45, 65}
	tree := newIntTree(keys...)

	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	for i, k := range sorted {
		n := tree.Search(k)
		require.NotNil(t, n)

		succ := tree.Successor(n)
		if i == len(sorted)-1 {
			assert.Nil(t, succ)
		} else {
			require.NotNil(t, succ)
			assert.Equal(t, sorted[i+1], succ.Key())
			assert.Same(t, n, tree.Predecessor(succ))
		}

		pred := tree.Predecessor(n)
		if i == 0 {
			assert.Nil(t, pred)
		} else {
			require.NotNil(t, pred)
			assert.Equal(t, sorted[i-1], pred.Key())
			assert.Same(t, n, tree.Successor(pred))
		}
	}

	assert.Nil(t, tree.Successor(nil))
	assert.Nil(t, tree.Predecessor(nil))
}

func TestTree_NeighborsOfStaleOrForeignNode(t *testing.T) {
	tree := newIntTree(1)
	n := tree.Search(1)
	require.NotNil(t, n)
	require.NoError(t, tree.Delete(1))

	assert.Nil(t, tree.Successor(n))
	assert.Nil(t, tree.Predecessor(n))

	tree = newIntTree(10, 20, 30)
	other := newIntTree(1, 2, 3, 4, 5)
	for _, k := range []int{1, 2, 3, 4, 5} {
		foreign := other.Search(k)
		require.NotNil(t, foreign)
		assert.Nil(t, tree.Successor(foreign), "key %d", k)
		assert.Nil(t, tree.Predecessor(foreign), "key %d", k)
	}

	// the own nodes still work
	assert.Equal(t, 30, tree.Successor(tree.Search(20)).Key())
}

func TestTree_FloorAndCeiling(t *testing.T) {
	tree := newIntTree(10, 20, 30, 40)

	assert.Nil(t, tree.Floor(5))
	assert.Equal(t, 10, tree.Floor(10).Key())
	assert.Equal(t, 20, tree.Floor(29).Key())
	assert.Equal(t, 40, tree.Floor(100).Key())

	assert.Equal(t, 10, tree.Ceiling(5).Key())
	assert.Equal(t, 30, tree.Ceiling(21).Key())
	assert.Equal(t, 40, tree.Ceiling(40).Key())
	assert.Nil(t, tree.Ceiling(41))

	empty := New[int, int]()
	assert.Nil(t, empty.Floor(1))
	assert.Nil(t, empty.Ceiling(1))
}

func TestTree_CustomCompare(t *testing.T) {
	tree := NewFunc[int, string](types.Reverse(types.Ordered[int]()))
	for _, k := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		tree.Upsert(k, "")
	}

	assert.Equal(t, []int{9, 6, 5, 4, 3, 2, 1}, slices.Collect(tree.Keys(types.InOrder)))
	assert.NoError(t, tree.Validate())
}

func TestTree_CopyInorder(t *testing.T) {
	tree := New[float64, float64]()
	for i := 1.0; i < 10.0; i += 1.0 {
		require.NoError(t, tree.Insert(i*100.0, i))
	}

	newTree := tree.CopyInorder(3)
	assert.Equal(t, 3, newTree.Size())

	assert.NotNil(t, newTree.Search(100.0))
	assert.NotNil(t, newTree.Search(200.0))
	assert.NotNil(t, newTree.Search(300.0))
	assert.Nil(t, newTree.Search(400.0))

	reversed := tree.CopyInorderReverse(2)
	assert.Equal(t, []float64{800, 900}, slices.Collect(reversed.Keys(types.InOrder)))

	all := tree.CopyInorder(0)
	assert.Equal(t, tree.Size(), all.Size())
	assert.NoError(t, all.Validate())
}

func TestTree_Copy(t *testing.T) {
	tree := New[float64, float64]()
	require.NoError(t, tree.Insert(3000.0, 1.0))
	assert.NotNil(t, tree.Root())

	require.NoError(t, tree.Insert(4000.0, 2.0))
	require.NoError(t, tree.Insert(2000.0, 3.0))

	newTree := tree.CopyInorder(0)
	node1 := newTree.Search(2000.0)
	require.NotNil(t, node1)
	assert.Equal(t, 2000.0, node1.Key())
	assert.Equal(t, 3.0, node1.Value())

	node2 := newTree.Search(3000.0)
	require.NotNil(t, node2)
	assert.Equal(t, 1.0, node2.Value())

	node3 := newTree.Search(4000.0)
	require.NotNil(t, node3)
	assert.Equal(t, 2.0, node3.Value())

	// the copy owns its own nodes
	node3.SetValue(5.0)
	v, _ := tree.Get(4000.0)
	assert.Equal(t, 2.0, v)
}

func TestTree_Clear(t *testing.T) {
	tree := newIntTree(1, 2, 3, 4, 5, 6, 7, 8, 9)
	tree.Clear()

	assert.True(t, tree.IsEmpty())
	assert.Equal(t, 0, tree.Size())
	assert.Equal(t, 0, tree.Height())
	assert.Equal(t, 0, tree.BlackHeight())
	assert.Equal(t, int64(0), tree.Stats().Live())
	assert.NoError(t, tree.Validate())

	// the tree is usable after being cleared
	require.NoError(t, tree.Insert(1, 1))
	assert.Equal(t, 1, tree.Size())
	assert.NoError(t, tree.Validate())
}

func TestTree_BlackHeight(t *testing.T) {
	assert.Equal(t, 1, newIntTree(1).BlackHeight())
	assert.Equal(t, 1, newIntTree(10, 20, 30).BlackHeight())
	assert.Equal(t, 2, newIntTree(1, 2, 3, 4, 5, 6, 7).BlackHeight())
}

func TestTree_String(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	assert.Equal(t, "<empty>\n", New[int, int]().String())

	tree := newIntTree(10, 20, 30)
	expected := "" +
		"└── 20(B)\n" +
		"   ├── 30(R)\n" +
		"   └── 10(R)\n"
	assert.Equal(t, expected, tree.String())

	tree.Upsert(40, 0)
	expected = "" +
		"└── 20(B)\n" +
		"   ├── 30(B)\n" +
		"   │  ├── 40(R)\n" +
		"   │  └── ·\n" +
		"   └── 10(B)\n"
	assert.Equal(t, expected, tree.String())
}
