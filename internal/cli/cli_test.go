package cli_test

import (
	"testing"

	"github.com/limbo/zenjournal/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "migrate"} {
		cmd, _, err := cli.RootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestMigrateArgs(t *testing.T) {
	cmd, _, err := cli.RootCmd.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NoError(t, cmd.Args(cmd, []string{"up"}))
	assert.NoError(t, cmd.Args(cmd, []string{"status"}))
	assert.Error(t, cmd.Args(cmd, []string{"sideways"}))
	assert.Error(t, cmd.Args(cmd, []string{}))
}

func TestEnvFileFlag(t *testing.T) {
	flag := cli.RootCmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, flag)
	assert.Equal(t, "./configs/.env", flag.DefValue)
}
