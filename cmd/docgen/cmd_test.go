// SPDX-License-Identifier: Apache-2.0

package docgen

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_BindsFlagsIntoOptions(t *testing.T) {
	cmd := &cobra.Command{Use: "docgen"}
	Configure(cmd)

	require.NoError(t, cmd.Flags().Set("request", "req.json"))
	require.NoError(t, cmd.Flags().Set("catalog", "catalog.json"))
	require.NoError(t, cmd.Flags().Set("destination", "/tmp/out"))
	require.NoError(t, cmd.Flags().Set("workers", "8"))
	require.NoError(t, cmd.Flags().Set("fail-fast", "true"))

	options, err := NewOptions()
	require.NoError(t, err)
	assert.Equal(t, "req.json", options.RequestPath)
	assert.Equal(t, "catalog.json", options.CatalogPath)
	assert.Equal(t, "/tmp/out", options.Destination)
	assert.Equal(t, 8, options.Workers)
	assert.True(t, options.FailFast)
	assert.Equal(t, "/tmp/out", options.ConvertDir, "convert-destination defaults to destination when unset")
	assert.False(t, options.Watch)
}

func TestConfigure_WatchFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "docgen"}
	Configure(cmd)

	require.NoError(t, cmd.Flags().Set("watch", "true"))

	options, err := NewOptions()
	require.NoError(t, err)
	assert.True(t, options.Watch)
}

func TestConfigure_GitHubTokenFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "docgen"}
	Configure(cmd)

	require.NoError(t, cmd.Flags().Set("github-token", "ghp_example"))

	options, err := NewOptions()
	require.NoError(t, err)
	assert.Equal(t, "ghp_example", options.GitHubToken)
}

func TestConfigure_ConvertDestinationOverridesDefault(t *testing.T) {
	cmd := &cobra.Command{Use: "docgen"}
	Configure(cmd)

	require.NoError(t, cmd.Flags().Set("destination", "/tmp/out"))
	require.NoError(t, cmd.Flags().Set("convert-destination", "/tmp/converted"))

	options, err := NewOptions()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/converted", options.ConvertDir)
}

func TestNewCommand_RequiresRequestAndCatalogFlags(t *testing.T) {
	cmd := NewCommand(nil)
	err := cmd.Flags().Set("request", "")
	require.NoError(t, err)
	assert.NotNil(t, cmd.Flags().Lookup("request"))
	assert.NotNil(t, cmd.Flags().Lookup("catalog"))
}
