package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c9s/ordmap/pkg/rbtree"
)

var OperationsMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ordmap_operations_total",
		Help: "tree operations by type and result",
	}, []string{"op", "result"})

var TreeSizeMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ordmap_tree_size",
		Help: "number of keys stored in the tree",
	})

var TreeHeightMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ordmap_tree_height",
		Help: "edges on the longest root-to-leaf path",
	})

var TreeBlackHeightMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ordmap_tree_black_height",
		Help: "black nodes on any root-to-leaf path",
	})

var TreeRotationsMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ordmap_tree_rotations",
		Help: "rotations performed by the rebalancing fix-ups since the tree was created",
	})

var TreeNodesAllocatedMetrics = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ordmap_tree_nodes_allocated",
		Help: "nodes taken from the pool and not yet released",
	})

func init() {
	prometheus.MustRegister(
		OperationsMetrics,
		TreeSizeMetrics,
		TreeHeightMetrics,
		TreeBlackHeightMetrics,
		TreeRotationsMetrics,
		TreeNodesAllocatedMetrics,
	)
}

// ObserveOperation counts one operation, labelled with the error class of err.
func ObserveOperation(op string, err error) {
	OperationsMetrics.WithLabelValues(op, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, rbtree.ErrKeyNotFound):
		return "not_found"
	case errors.Is(err, rbtree.ErrDuplicateKey):
		return "duplicate"
	}
	return "error"
}

type TreeStatus struct {
	Size        int          `json:"size"`
	Height      int          `json:"height"`
	BlackHeight int          `json:"blackHeight"`
	Stats       rbtree.Stats `json:"stats"`
}

func UpdateTreeMetrics(status TreeStatus) {
	TreeSizeMetrics.Set(float64(status.Size))
	TreeHeightMetrics.Set(float64(status.Height))
	TreeBlackHeightMetrics.Set(float64(status.BlackHeight))
	TreeRotationsMetrics.Set(float64(status.Stats.Rotations))
	TreeNodesAllocatedMetrics.Set(float64(status.Stats.Live()))
}
