package cmd

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetRootCmd clears the process-global flag/command state cobra.Command
// mutates on Execute, so each test gets a clean rootCmd the way
// CWBudde-go-dws's CLI tests rebuild the binary per run instead of reusing
// leftover flag state.
func resetRootCmd(t *testing.T) {
	t.Helper()
	configPath = ".blocksc.yaml"
	verbose = false
	cfg = nil
	logger = nil
	outputFile = ""
}

func TestCompileCommandWritesDecimalWords(t *testing.T) {
	resetRootCmd(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "prog.blk")
	require.NoError(t, os.WriteFile(src, []byte("set 0 = 1;\n"), 0o644))
	out := filepath.Join(dir, "out.txt")

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "compile", "-o", out, src})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Fields(strings.TrimSpace(string(data)))
	require.NotEmpty(t, lines)
	for _, line := range lines {
		_, err := strconv.ParseInt(line, 10, 32)
		require.NoError(t, err, "line %q must parse as a decimal word", line)
	}
}

func TestCompileCommandReportsUndeclaredVar(t *testing.T) {
	resetRootCmd(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "prog.blk")
	require.NoError(t, os.WriteFile(src, []byte("goto Nope;\n"), 0o644))

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "compile", src})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Nope")
}

func TestLexCommandRuns(t *testing.T) {
	resetRootCmd(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "prog.blk")
	require.NoError(t, os.WriteFile(src, []byte("set x = 1;\n"), 0o644))

	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "lex", src})
	require.NoError(t, rootCmd.Execute())
}
