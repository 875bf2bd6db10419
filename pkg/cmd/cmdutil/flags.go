package cmdutil

import "github.com/spf13/pflag"

// PersistentFlags defines the flags shared by every sub-command
func PersistentFlags(flags *pflag.FlagSet) {
	flags.Bool("debug", false, "debug flag")
	flags.String("config", "", "config file")
	flags.String("log-file", "", "write json logs to this file, rotated by size")
	flags.String("env", "development", "environment name reported with the errors")
	flags.String("rollbar-token", "", "report errors to rollbar with this token")
}

// OrderFlag defines the traversal order flag
func OrderFlag(flags *pflag.FlagSet, defaultOrder string) {
	flags.String("order", defaultOrder, "traversal order: inorder, preorder, postorder or levelorder")
}
