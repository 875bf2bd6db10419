package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/ordmap/pkg/cmd/cmdutil"
	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/snapshot"
	"github.com/c9s/ordmap/pkg/style"
	"github.com/c9s/ordmap/pkg/types"
	"github.com/c9s/ordmap/pkg/workload"
)

func init() {
	cmdutil.OrderFlag(ReplayCmd.Flags(), "inorder")
	ReplayCmd.Flags().Bool("graph", false, "print the tree graph")
	ReplayCmd.Flags().Bool("validate", true, "validate the red-black invariants after replaying")
	ReplayCmd.Flags().String("output", "", "write the resulting entries to a snapshot file")
	RootCmd.AddCommand(ReplayCmd)
}

type replayOptions struct {
	Order    types.Order
	Graph    bool
	Validate bool
	Output   string
}

// ReplayCmd applies a workload script to an empty tree
var ReplayCmd = &cobra.Command{
	Use:          "replay [script.yaml]",
	Short:        "apply a workload script and print the resulting tree",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := types.ParseOrder(viper.GetString("order"))
		if err != nil {
			return err
		}

		script, err := workload.Load(args[0])
		if err != nil {
			return err
		}

		return replay(cmd.OutOrStdout(), script, replayOptions{
			Order:    order,
			Graph:    viper.GetBool("graph"),
			Validate: viper.GetBool("validate"),
			Output:   viper.GetString("output"),
		})
	},
}

func replay(w io.Writer, script *workload.Script, options replayOptions) error {
	tree := rbtree.New[int64, string]()

	report, err := workload.Apply(tree, script)
	if err != nil {
		return err
	}

	log.Infof("replayed %d keys in %d operations", script.Count(), len(script.Operations))

	writeReport(w, report)

	keys := make([]string, 0, tree.Size())
	for key := range tree.Keys(options.Order) {
		keys = append(keys, fmt.Sprint(key))
	}
	fmt.Fprintf(w, "%s: [%s]\n", options.Order, strings.Join(keys, " "))

	if options.Graph {
		if err := tree.Fprint(w); err != nil {
			return err
		}
	}

	if options.Validate {
		if err := tree.Validate(); err != nil {
			return errors.Wrap(err, "red-black tree validation failed")
		}

		fmt.Fprintf(w, "valid: size=%d height=%d black-height=%d\n", tree.Size(), tree.Height(), tree.BlackHeight())
	}

	if options.Output != "" {
		if err := snapshot.Save(options.Output, tree.Entries(types.InOrder, 0)); err != nil {
			return err
		}

		log.Infof("snapshot written: %s", options.Output)
	}

	return nil
}

func writeReport(w io.Writer, report *workload.Report) {
	newReportTable(w, report).Render()
}

func newReportTable(w io.Writer, report *workload.Report) table.Writer {
	t := style.NewTable(w, "replay", !color.NoColor,
		"inserted", "updated", "duplicates", "deleted", "missing", "hits", "misses")
	t.AppendRow(table.Row{
		report.Inserted,
		report.Updated,
		report.Duplicates,
		report.Deleted,
		len(report.Missing),
		report.Hits,
		report.Misses,
	})
	return t
}
