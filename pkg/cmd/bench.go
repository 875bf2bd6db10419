package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/c9s/ordmap/pkg/bst"
	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/style"
	"github.com/c9s/ordmap/pkg/util"
	"github.com/c9s/ordmap/pkg/workload"
)

func init() {
	BenchCmd.Flags().IntSlice("sizes", []int{1000, 10000}, "number of keys of each run")
	BenchCmd.Flags().Bool("sorted", false, "insert the keys in ascending order")
	BenchCmd.Flags().Float64("delete-ratio", 0.25, "share of the inserted keys deleted afterwards")
	BenchCmd.Flags().Int("searches", 1000, "number of random lookups of each run")
	BenchCmd.Flags().Int64("seed", 1, "random seed of the generated workloads")
	BenchCmd.Flags().Int("repeat", 1, "number of runs of each size, timings are averaged")
	BenchCmd.Flags().String("chart", "", "render the heights to this png file")
	BenchCmd.Flags().Bool("progress", true, "show the progress bar")
	RootCmd.AddCommand(BenchCmd)
}

type benchOptions struct {
	Sizes       []int
	Sorted      bool
	DeleteRatio float64
	Searches    int
	Seed        int64
	Repeat      int
	Progress    io.Writer
}

type benchResult struct {
	Size   int
	Sorted bool

	Height      int
	BlackHeight int
	Rotations   int64

	// Elapsed and BaselineElapsed are the mean of the runs
	Elapsed       time.Duration
	ElapsedStdDev time.Duration

	BaselineHeight        int
	BaselineElapsed       time.Duration
	BaselineElapsedStdDev time.Duration
}

// HeightBound is the upper bound 2*log2(n+1) of a red-black tree height.
func (r benchResult) HeightBound() int {
	return int(2 * math.Log2(float64(r.Size+1)))
}

// BenchCmd builds a red-black tree and an unbalanced binary search tree from the
// same generated workloads and compares their heights and timings.
var BenchCmd = &cobra.Command{
	Use:          "bench",
	Short:        "compare the red-black tree with an unbalanced binary search tree",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sizes, err := cmd.Flags().GetIntSlice("sizes")
		if err != nil {
			return err
		}

		options := benchOptions{
			Sizes:       sizes,
			Sorted:      viper.GetBool("sorted"),
			DeleteRatio: viper.GetFloat64("delete-ratio"),
			Searches:    viper.GetInt("searches"),
			Seed:        viper.GetInt64("seed"),
			Repeat:      viper.GetInt("repeat"),
		}

		if viper.GetBool("progress") {
			options.Progress = cmd.ErrOrStderr()
		}

		results, err := bench(cmd.Context(), options)
		if err != nil {
			return err
		}

		writeBenchResults(cmd.OutOrStdout(), results)

		if chartPath := viper.GetString("chart"); chartPath != "" {
			if err := writeHeightChartFile(chartPath, results); err != nil {
				return err
			}

			log.Infof("height chart written: %s", chartPath)
		}

		return nil
	},
}

func bench(ctx context.Context, options benchOptions) ([]benchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if options.Repeat <= 0 {
		options.Repeat = 1
	}

	scripts := make([]*workload.Script, len(options.Sizes))
	total := 0
	for i, size := range options.Sizes {
		if size < 0 {
			return nil, errors.Errorf("invalid size %d", size)
		}

		scripts[i] = workload.Generate(workload.GenerateOptions{
			Size:        size,
			Sorted:      options.Sorted,
			DeleteRatio: options.DeleteRatio,
			Searches:    options.Searches,
			Seed:        options.Seed + int64(i),
		})

		// every key is applied to both trees in every run
		total += scripts[i].Count() * 2 * options.Repeat
	}

	var bar *pb.ProgressBar
	if options.Progress != nil {
		bar = pb.Full.New(total)
		bar.SetWriter(options.Progress)
		bar.Start()
		defer bar.Finish()
	}

	progress := func() {
		if bar != nil {
			bar.Increment()
		}
	}

	results := make([]benchResult, len(options.Sizes))
	g, ctx := errgroup.WithContext(ctx)
	for i := range options.Sizes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := benchRuns(scripts[i], options.Repeat, progress)
			if err != nil {
				return errors.Wrapf(err, "bench size %d", options.Sizes[i])
			}

			result.Size = options.Sizes[i]
			result.Sorted = options.Sorted
			results[i] = *result

			log.Debugf("bench size %d done: rbtree %s, bst %s", result.Size, result.Elapsed, result.BaselineElapsed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// benchRuns runs the script repeat times and reports the mean and the standard
// deviation of the timings.
func benchRuns(script *workload.Script, repeat int, progress func()) (*benchResult, error) {
	var result *benchResult
	var elapsed, baselineElapsed []float64

	for i := 0; i < repeat; i++ {
		r, err := benchOne(script, progress)
		if err != nil {
			return nil, err
		}

		result = r
		elapsed = append(elapsed, float64(r.Elapsed))
		baselineElapsed = append(baselineElapsed, float64(r.BaselineElapsed))
	}

	result.Elapsed, result.ElapsedStdDev = meanStdDev(elapsed)
	result.BaselineElapsed, result.BaselineElapsedStdDev = meanStdDev(baselineElapsed)
	return result, nil
}

func meanStdDev(xs []float64) (mean, stdDev time.Duration) {
	if len(xs) < 2 {
		return time.Duration(stat.Mean(xs, nil)), 0
	}

	m, sd := stat.MeanStdDev(xs, nil)
	return time.Duration(m), time.Duration(sd)
}

func benchOne(script *workload.Script, progress func()) (*benchResult, error) {
	tree := rbtree.New[int64, string]()

	profile := util.StartTimeProfile("rbtree")
	if _, err := workload.ApplyWithProgress(tree, script, progress); err != nil {
		return nil, err
	}
	elapsed := profile.Stop()

	if err := tree.Validate(); err != nil {
		return nil, err
	}

	baseline := bst.New[int64, string]()
	profile = util.StartTimeProfile("bst")
	applyBaseline(baseline, script, progress)
	baselineElapsed := profile.Stop()

	if baseline.Size() != tree.Size() {
		return nil, errors.Errorf("size mismatch: red-black tree has %d keys, baseline has %d", tree.Size(), baseline.Size())
	}

	return &benchResult{
		Height:          tree.Height(),
		BlackHeight:     tree.BlackHeight(),
		Rotations:       tree.Stats().Rotations,
		Elapsed:         elapsed,
		BaselineHeight:  baseline.Height(),
		BaselineElapsed: baselineElapsed,
	}, nil
}

// applyBaseline mirrors workload.Apply on the unbalanced tree, which keeps
// duplicates, so inserts and upserts of a present key only update the count.
func applyBaseline(tree *bst.Tree[int64, string], script *workload.Script, progress func()) {
	for _, op := range script.Operations {
		for _, key := range op.Keys {
			switch op.Op {
			case workload.OpInsert, workload.OpUpsert:
				if _, ok := tree.Search(key); !ok {
					tree.Insert(key, op.Value)
				}

			case workload.OpDelete:
				tree.Remove(key)

			case workload.OpSearch:
				tree.Search(key)
			}

			progress()
		}
	}
}

func writeBenchResults(w io.Writer, results []benchResult) {
	t := style.NewTable(w, "red-black tree vs binary search tree", !color.NoColor,
		"keys", "input", "rb height", "bound", "black height", "rotations", "rb time", "bst height", "bst time", "stddev")

	for _, r := range results {
		input := "random"
		if r.Sorted {
			input = "sorted"
		}

		t.AppendRow(table.Row{
			r.Size,
			input,
			r.Height,
			r.HeightBound(),
			r.BlackHeight,
			r.Rotations,
			r.Elapsed.Round(time.Microsecond),
			r.BaselineHeight,
			r.BaselineElapsed.Round(time.Microsecond),
			fmt.Sprintf("%s / %s", r.ElapsedStdDev.Round(time.Microsecond), r.BaselineElapsedStdDev.Round(time.Microsecond)),
		})
	}

	t.Render()
}
