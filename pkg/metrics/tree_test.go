package metrics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/c9s/ordmap/pkg/rbtree"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsMetrics.WithLabelValues("delete", "not_found"))

	ObserveOperation("delete", errors.Wrap(rbtree.ErrKeyNotFound, "key 1"))
	ObserveOperation("delete", rbtree.ErrKeyNotFound)

	after := testutil.ToFloat64(OperationsMetrics.WithLabelValues("delete", "not_found"))
	assert.Equal(t, before+2, after)

	assert.Equal(t, "ok", resultOf(nil))
	assert.Equal(t, "duplicate", resultOf(rbtree.ErrDuplicateKey))
	assert.Equal(t, "error", resultOf(errors.New("boom")))
}

func TestUpdateTreeMetrics(t *testing.T) {
	tree := rbtree.New[int, int]()
	for i := 0; i < 10; i++ {
		tree.Upsert(i, i)
	}

	UpdateTreeMetrics(TreeStatus{
		Size:        tree.Size(),
		Height:      tree.Height(),
		BlackHeight: tree.BlackHeight(),
		Stats:       tree.Stats(),
	})

	assert.Equal(t, 10.0, testutil.ToFloat64(TreeSizeMetrics))
	assert.Equal(t, float64(tree.Height()), testutil.ToFloat64(TreeHeightMetrics))
	assert.Equal(t, float64(tree.Stats().Rotations), testutil.ToFloat64(TreeRotationsMetrics))
	assert.Equal(t, 10.0, testutil.ToFloat64(TreeNodesAllocatedMetrics))
}

func TestMetricNames(t *testing.T) {
	// only counters carry the _total suffix
	assert.Contains(t, OperationsMetrics.WithLabelValues("search", "ok").Desc().String(), `"ordmap_operations_total"`)
	assert.Contains(t, TreeRotationsMetrics.Desc().String(), `"ordmap_tree_rotations"`)
	assert.NotContains(t, TreeRotationsMetrics.Desc().String(), "_total")
}
