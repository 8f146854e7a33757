package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	global := []string{"--config", filepath.Join(dir, "none.yaml"), "--dir", filepath.Join(dir, "scenes"), "--log-level", "error"}
	with := func(args ...string) []string { return append(append([]string{}, args...), global...) }

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bitrig version")

	_, err = run(t, with("seed", "demo")...)
	require.NoError(t, err)

	out, err = run(t, with("build", "demo", "biped", "--tree")...)
	require.NoError(t, err)
	assert.Contains(t, out, "character biped")
	assert.Contains(t, out, "biped_rig")

	out, err = run(t, with("graph", "demo", "biped", "--built")...)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")

	_, err = run(t, with("modules", "demo")...)
	assert.Error(t, err, "character argument is required")
}
