package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/types"
)

func init() {
	PrintCmd.Flags().Int64Slice("keys", nil, "keys to insert, in insertion order")
	PrintCmd.Flags().Int64Slice("delete", nil, "keys to delete after the insertion")
	RootCmd.AddCommand(PrintCmd)
}

var PrintCmd = &cobra.Command{
	Use:          "print --keys 10,20,30",
	Short:        "insert keys and print the tree graph and its traversals",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := cmd.Flags().GetInt64Slice("keys")
		if err != nil {
			return err
		}

		deletes, err := cmd.Flags().GetInt64Slice("delete")
		if err != nil {
			return err
		}

		return printTree(cmd.OutOrStdout(), keys, deletes)
	},
}

func printTree(w io.Writer, keys, deletes []int64) error {
	tree := rbtree.New[int64, string]()
	for _, key := range keys {
		tree.Upsert(key, fmt.Sprint(key))
	}

	for _, key := range deletes {
		if err := tree.Delete(key); err != nil {
			return err
		}
	}

	if err := tree.Fprint(w); err != nil {
		return err
	}

	for _, order := range types.Orders() {
		var ss []string
		for key := range tree.Keys(order) {
			ss = append(ss, fmt.Sprint(key))
		}

		fmt.Fprintf(w, "%-10s [%s]\n", order.String()+":", strings.Join(ss, " "))
	}

	stats := tree.Stats()
	fmt.Fprintf(w, "size=%d height=%d black-height=%d rotations=%d\n", tree.Size(), tree.Height(), tree.BlackHeight(), stats.Rotations)
	return nil
}
