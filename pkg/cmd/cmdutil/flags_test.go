package cmdutil

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	PersistentFlags(flags)
	OrderFlag(flags, "levelorder")

	require.NoError(t, flags.Parse([]string{"--debug", "--log-file", "ordmap.log"}))

	debug, err := flags.GetBool("debug")
	require.NoError(t, err)
	assert.True(t, debug)

	logFile, err := flags.GetString("log-file")
	require.NoError(t, err)
	assert.Equal(t, "ordmap.log", logFile)

	order, err := flags.GetString("order")
	require.NoError(t, err)
	assert.Equal(t, "levelorder", order)
}
