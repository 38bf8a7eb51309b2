package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const envDSN = "analyst:hunter2@acme-xy12345/GOV"

func TestRootCmd_HelpHidesDSN(t *testing.T) {
	t.Setenv("AUTOCLASS_DSN", envDSN)

	rootCmd, err := newRootCmd()
	require.NoError(t, err)
	assert.Empty(t, rootCmd.PersistentFlags().Lookup("dsn").DefValue)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--help"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "--dsn")
	assert.NotContains(t, out.String(), "hunter2")
	assert.Equal(t, envDSN, cfg.DSN)
}

func TestRootCmd_DSNFromEnvAndFlag(t *testing.T) {
	t.Setenv("AUTOCLASS_DSN", envDSN)

	rootCmd, err := newRootCmd()
	require.NoError(t, err)
	rootCmd.SetArgs([]string{"categories"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, envDSN, cfg.DSN)

	rootCmd, err = newRootCmd()
	require.NoError(t, err)
	rootCmd.SetArgs([]string{"--dsn", "other@acme/GOV", "categories"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "other@acme/GOV", cfg.DSN)
}
