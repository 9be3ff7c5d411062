package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafflehq/orderops/internal/cli"
	"github.com/rafflehq/orderops/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "orderops", root.Use)
		assert.True(t, root.SilenceUsage)
	})

	t.Run("subcommands registered", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		names := make([]string, 0)
		for _, sub := range root.Commands() {
			names = append(names, sub.Name())
		}
		assert.Contains(t, names, "approve")
		assert.Contains(t, names, "status")
		assert.Contains(t, names, "version")
	})
}
