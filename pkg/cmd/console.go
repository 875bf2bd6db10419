package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/snapshot"
	"github.com/c9s/ordmap/pkg/types"
)

func init() {
	ConsoleCmd.Flags().String("snapshot", "", "snapshot file loaded before the first command")
	RootCmd.AddCommand(ConsoleCmd)
}

var errQuit = errors.New("quit")

const consoleHelp = `commands:
  insert KEY [VALUE]    insert a new key
  upsert KEY [VALUE]    insert or update a key
  delete KEY...         delete keys, missing keys are reported
  get KEY               print the value of a key
  succ KEY | pred KEY   print the neighbor of a stored key
  floor KEY | ceil KEY  print the closest key at or below / above
  min | max             print the smallest / largest key
  range LO HI           print the keys with LO <= key < HI
  walk [ORDER]          print the keys in inorder, preorder, postorder or levelorder
  print                 print the tree graph
  validate              check the red-black properties
  stats                 print size, height and rotations
  save FILE             write a snapshot
  clear                 remove all keys
  quit
`

// ConsoleCmd reads commands line by line and applies them to one tree.
var ConsoleCmd = &cobra.Command{
	Use:          "console",
	Short:        "manipulate a tree interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree := rbtree.New[int64, string]()

		if path := viper.GetString("snapshot"); path != "" {
			entries, err := snapshot.Load(path)
			if err != nil {
				return err
			}

			snapshot.Restore(tree, entries)
		}

		return runConsole(cmd.InOrStdin(), cmd.OutOrStdout(), tree)
	},
}

func runConsole(in io.Reader, out io.Writer, tree *rbtree.Tree[int64, string]) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		args, err := shellwords.Parse(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		if len(args) == 0 || strings.HasPrefix(args[0], "#") {
			continue
		}

		if err := execConsole(out, tree, args[0], args[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}

			fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	return scanner.Err()
}

func execConsole(out io.Writer, tree *rbtree.Tree[int64, string], command string, args []string) error {
	command = strings.ToLower(command)
	switch command {
	case "insert", "upsert":
		if len(args) < 1 || len(args) > 2 {
			return errors.Errorf("usage: %s KEY [VALUE]", command)
		}

		key, err := parseConsoleKey(args[0])
		if err != nil {
			return err
		}

		value := args[0]
		if len(args) == 2 {
			value = args[1]
		}

		if command == "insert" {
			return tree.Insert(key, value)
		}

		if !tree.Upsert(key, value) {
			fmt.Fprintf(out, "updated %d\n", key)
		}
		return nil

	case "delete":
		keys, err := parseConsoleKeys(args, 1)
		if err != nil {
			return err
		}

		// the present keys are deleted even when some are missing
		err = nil
		for _, key := range keys {
			err = multierr.Append(err, tree.Delete(key))
		}
		return err

	case "get":
		keys, err := parseConsoleKeys(args, 1)
		if err != nil {
			return err
		}

		value, err := tree.Get(keys[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%d: %s\n", keys[0], value)
		return nil

	case "succ", "pred":
		keys, err := parseConsoleKeys(args, 1)
		if err != nil {
			return err
		}

		n := tree.Search(keys[0])
		if n == nil {
			return errors.Wrapf(rbtree.ErrKeyNotFound, "key %d", keys[0])
		}

		if command == "succ" {
			n = tree.Successor(n)
		} else {
			n = tree.Predecessor(n)
		}

		printConsoleNode(out, n)
		return nil

	case "floor", "ceil":
		keys, err := parseConsoleKeys(args, 1)
		if err != nil {
			return err
		}

		if command == "floor" {
			printConsoleNode(out, tree.Floor(keys[0]))
		} else {
			printConsoleNode(out, tree.Ceiling(keys[0]))
		}
		return nil

	case "min", "max":
		var n *rbtree.Node[int64, string]
		var err error
		if command == "min" {
			n, err = tree.Min()
		} else {
			n, err = tree.Max()
		}

		if err != nil {
			return err
		}

		printConsoleNode(out, n)
		return nil

	case "range":
		keys, err := parseConsoleKeys(args, 2)
		if err != nil {
			return err
		}

		var ss []string
		for key := range tree.Scan(keys[0], keys[1]) {
			ss = append(ss, strconv.FormatInt(key, 10))
		}

		fmt.Fprintf(out, "[%s]\n", strings.Join(ss, " "))
		return nil

	case "walk":
		order := types.InOrder
		if len(args) > 0 {
			var err error
			if order, err = types.ParseOrder(args[0]); err != nil {
				return err
			}
		}

		var ss []string
		for key := range tree.Keys(order) {
			ss = append(ss, strconv.FormatInt(key, 10))
		}

		fmt.Fprintf(out, "%s: [%s]\n", order, strings.Join(ss, " "))
		return nil

	case "print":
		return tree.Fprint(out)

	case "validate":
		if err := tree.Validate(); err != nil {
			return err
		}

		fmt.Fprintln(out, "valid")
		return nil

	case "stats":
		stats := tree.Stats()
		fmt.Fprintf(out, "size=%d height=%d black-height=%d rotations=%d live-nodes=%d\n",
			tree.Size(), tree.Height(), tree.BlackHeight(), stats.Rotations, stats.Live())
		return nil

	case "save":
		if len(args) != 1 {
			return errors.New("usage: save FILE")
		}

		return snapshot.Save(args[0], tree.Entries(types.InOrder, 0))

	case "clear":
		tree.Clear()
		return nil

	case "help":
		fmt.Fprint(out, consoleHelp)
		return nil

	case "quit", "exit":
		return errQuit
	}

	return errors.Errorf("unknown command %q, try help", command)
}

func printConsoleNode(out io.Writer, n *rbtree.Node[int64, string]) {
	if n == nil {
		fmt.Fprintln(out, "<none>")
		return
	}

	fmt.Fprintf(out, "%d: %s\n", n.Key(), n.Value())
}

func parseConsoleKey(s string) (int64, error) {
	key, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid key %q", s)
	}
	return key, nil
}

// parseConsoleKeys parses all arguments as keys, at least n are required.
func parseConsoleKeys(args []string, n int) ([]int64, error) {
	if len(args) < n {
		return nil, errors.Errorf("expect %d key(s), got %d", n, len(args))
	}

	keys := make([]int64, 0, len(args))
	for _, arg := range args {
		key, err := parseConsoleKey(arg)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
