// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPristineRootCmd builds a fresh root command for a test so state from the
// package-level instance never leaks between cases.
func newPristineRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pagepilot",
		Short:   "Pagepilot is a timed browser automation runner.",
		Version: Version,
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	cmd.AddCommand(newRunCmd(), newSettingsCmd())
	return cmd
}

func TestRootCmd_VersionFlag(t *testing.T) {
	testRootCmd := newPristineRootCmd()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{"--version"})

	err := testRootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), Version)
}

func TestRootCmd_NoArgs(t *testing.T) {
	testRootCmd := newPristineRootCmd()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{})

	err := testRootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "timed browser automation runner")
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	testRootCmd := newPristineRootCmd()

	names := make(map[string]bool)
	for _, c := range testRootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"], "run command should be registered")
	assert.True(t, names["settings"], "settings command should be registered")
}

func TestSettingsCmd_HasInitAndShow(t *testing.T) {
	settingsCmd := newSettingsCmd()

	names := make(map[string]bool)
	for _, c := range settingsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["show"])
}

func TestRunCmd_Flags(t *testing.T) {
	runCmd := newRunCmd()
	assert.NotNil(t, runCmd.Flags().Lookup("settings"))
	assert.NotNil(t, runCmd.Flags().Lookup("data-root"))
}
