package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mdaform", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"forms"},
		{"render"},
		{"entry"},
		{"submit"},
		{"list"},
		{"delete"},
		{"export"},
		{"openapi"},
		{"serve"},
		{"schema", "list"},
		{"schema", "check"},
		{"schema", "add-module"},
		{"schema", "delete-module"},
		{"schema", "add-form"},
		{"schema", "delete-form"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "mdaform.yaml", configFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	renderCmd, _, err := cmd.Find([]string{"render"})
	require.NoError(t, err)
	require.NotNil(t, renderCmd.Flags().Lookup("id"))
	assert.Equal(t, "html", renderCmd.Flags().Lookup("renderer").DefValue)
	assert.Equal(t, "o", renderCmd.Flags().Lookup("output").Shorthand)

	entryCmd, _, err := cmd.Find([]string{"entry"})
	require.NoError(t, err)
	assert.Equal(t, "3", entryCmd.Flags().Lookup("attempts").DefValue)
	assert.Equal(t, "desktop", entryCmd.Flags().Lookup("target").DefValue)

	submitCmd, _, err := cmd.Find([]string{"submit"})
	require.NoError(t, err)
	assert.Equal(t, "-", submitCmd.Flags().Lookup("file").DefValue)

	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serveCmd.Flags().Lookup("addr"))
	require.NotNil(t, serveCmd.Flags().Lookup("watch"))
}

func TestInvalidFormatIsRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "--format", "xml", "forms")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}
