package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "fresh-init-bin-*")
	if err != nil {
		panic("failed to create temp dir: " + err.Error())
	}
	binary = filepath.Join(tmpDir, "fresh-init")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	build := exec.CommandContext(ctx, "go", "build", "-o", binary, ".")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		cancel()
		os.RemoveAll(tmpDir)
		panic("failed to build fresh-init: " + err.Error())
	}
	cancel()

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// runBinary runs fresh-init in workDir with stdin, returning its output and
// exit code. stdin is closed after it is consumed.
func runBinary(t *testing.T, workDir, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(), "FRESH_CONFIG="+filepath.Join(t.TempDir(), "none.yaml"))
	var out, errOut strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	require.NoError(t, ctx.Err(), "fresh-init did not exit")

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		require.NoError(t, err)
	}
	return out.String(), errOut.String(), code
}

func TestBinaryCreatesProject(t *testing.T) {
	dir := t.TempDir()

	stdout, stderr, code := runBinary(t, dir, "", "my-app", "--twind", "--vscode")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "go run .")

	for _, f := range []string{"main.go", "fresh.gen.go", "twind.config.yaml", ".vscode/settings.json", ".gitignore"} {
		assert.FileExists(t, filepath.Join(dir, "my-app", filepath.FromSlash(f)))
	}
}

func TestBinaryRejectsUnknownFlags(t *testing.T) {
	for _, args := range [][]string{{"--foo"}, {"-f"}, {"my-app", "--foo"}} {
		dir := t.TempDir()

		_, stderr, code := runBinary(t, dir, "", args...)
		assert.Equal(t, 1, code, "args %v", args)
		assert.Contains(t, stderr, "fresh-init")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "args %v", args)
	}
}

func TestBinaryClosedStdinDoesNotHang(t *testing.T) {
	dir := t.TempDir()

	stdout, stderr, code := runBinary(t, dir, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Enter your project directory")
	assert.True(t, strings.HasPrefix(stderr, "fresh-init: "), stderr)
}

func TestBinaryDot(t *testing.T) {
	dir := t.TempDir()

	stdout, stderr, code := runBinary(t, dir, "", ".")
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, stdout, "Enter your project directory")
	assert.FileExists(t, filepath.Join(dir, "go.mod"))
}

func TestBinaryVersion(t *testing.T) {
	stdout, stderr, code := runBinary(t, t.TempDir(), "", "--version")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "fresh-init "), stdout)
}
