package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "tables.md", "| a | b |\n|---|---|\n| 1 | 2 |\n")
	bad := writeFile(t, dir, "notes.txt", "hello")
	empty := writeFile(t, dir, "empty.md", "")

	v := intake.NewValidator(policy.Default(), nil)

	var out bytes.Buffer
	require.NoError(t, runCheck(&out, v, []string{good}, true))
	assert.Contains(t, out.String(), "✓ "+good)
	assert.Contains(t, out.String(), "| a | b |")

	out.Reset()
	err := runCheck(&out, v, []string{good, bad, empty, filepath.Join(dir, "missing.md")}, false)
	assert.EqualError(t, err, "3 of 4 files rejected")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✓ "))
	assert.Contains(t, out.String(), "✗ "+bad)
	assert.Contains(t, out.String(), "✗ "+empty)
	assert.Contains(t, out.String(), "missing.md")
}

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "md2xlsx-ui dev (built unknown)\n", out.String())
}

func TestRootCmd_CheckUsesConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ui.config")
	path := writeFile(t, dir, "t.md", "# title\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "check", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ "+path)

	_, err := os.Stat(configPath)
	assert.NoError(t, err)
}
