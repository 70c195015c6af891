package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCatalog_Embedded(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runCheckCatalog(cmd, nil))
	assert.Contains(t, out.String(), "jal-board")
	assert.Contains(t, out.String(), "languages:")
}

func TestCheckCatalog_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("departments: [}"), 0o644))

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, runCheckCatalog(cmd, []string{path}))

	assert.Error(t, runCheckCatalog(cmd, []string{filepath.Join(t.TempDir(), "missing.yaml")}))
}

func TestStaffCmd_RequiresCredentials(t *testing.T) {
	rootCmd.SetArgs([]string{"staff"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
