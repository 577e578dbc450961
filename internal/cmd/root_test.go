package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumangal44/fresh/internal/config"
	oerrors "github.com/Sumangal44/fresh/internal/errors"
	"github.com/Sumangal44/fresh/internal/features"
	"github.com/Sumangal44/fresh/internal/target"
	"github.com/Sumangal44/fresh/internal/testutil"
)

type result struct {
	stdout string
	stderr string
	code   int
}

// run executes fresh-init in a fresh temp working directory with no config
// file and no FRESH_* environment. It returns the working directory.
func run(t *testing.T, stdin string, args ...string) (string, result) {
	t.Helper()
	cwd := t.TempDir()
	t.Chdir(cwd)
	return cwd, runIn(t, stdin, args...)
}

func runIn(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	for _, env := range []string{
		config.EnvConfigFile, config.EnvTwind, config.EnvVSCode,
		config.EnvTimestamps, config.EnvRuntimeVersion, config.EnvRuntimeReplace,
	} {
		if _, set := os.LookupEnv(env); !set {
			t.Setenv(env, "")
		}
	}
	if os.Getenv(config.EnvConfigFile) == "" {
		t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	}

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	code := PrintError(&stderr, err)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func TestInvalidInvocationLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown long flag", []string{"--foo"}},
		{"unknown short flag", []string{"-f"}},
		{"unknown flag after path", []string{"my-app", "--foo"}},
		{"unknown flag before path", []string{"--bar", "my-app"}},
		{"bad bool value", []string{"my-app", "--twind=maybe"}},
		{"two paths", []string{"one", "two"}},
		{"module without value", []string{"my-app", "--module"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cwd, res := run(t, "", tt.args...)

			assert.Equal(t, oerrors.ExitFailure, res.code)
			assert.Contains(t, res.stderr, "fresh-init")
			assert.Empty(t, res.stdout)
			assert.Empty(t, testutil.Names(t, cwd))
		})
	}
}

func TestNoArgumentPrompts(t *testing.T) {
	cwd, res := run(t, "my-app\n")

	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, target.PromptText), res.stdout)
	assert.FileExists(t, filepath.Join(cwd, "my-app", "main.go"))
}

func TestNoArgumentEOF(t *testing.T) {
	for _, stdin := range []string{"", "\n", "   \n"} {
		cwd, res := run(t, stdin)

		assert.Equal(t, oerrors.ExitFailure, res.code, "stdin %q", stdin)
		assert.Contains(t, res.stdout, target.PromptText)
		assert.Contains(t, res.stderr, "fresh-init: ")
		assert.Contains(t, res.stderr, "no project directory")
		assert.Empty(t, testutil.Names(t, cwd))
	}
}

func TestDotUsesWorkingDirectory(t *testing.T) {
	cwd, res := run(t, "", ".")

	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.NotContains(t, res.stdout, target.PromptText)
	assert.FileExists(t, filepath.Join(cwd, "go.mod"))
	assert.NotContains(t, res.stdout, "cd ")
	assert.Contains(t, res.stdout, "go run .")

	assert.Contains(t, testutil.ReadFile(t, cwd, "go.mod"), "module example.com/"+filepath.Base(cwd))
}

func TestRelativeAndAbsolutePaths(t *testing.T) {
	cwd, res := run(t, "", filepath.Join("nested", "site"))
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(cwd, "nested", "site", "fresh.gen.go"))
	assert.Contains(t, res.stdout, "cd "+filepath.Join("nested", "site"))

	abs := filepath.Join(t.TempDir(), "abs-site")
	res = runIn(t, "", abs)
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(abs, "fresh.gen.go"))
}

func TestSummary(t *testing.T) {
	_, res := run(t, "", "my-app", "--twind")

	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "example.com/my-app")
	assert.Contains(t, res.stdout, "twind")
	assert.Contains(t, res.stdout, "twind.config.yaml")
	assert.Contains(t, res.stdout, "counter.go")
	assert.Contains(t, res.stdout, "cd my-app")
	assert.Contains(t, res.stdout, "go mod tidy")
}

func TestNonEmptyDirectoryNeedsForce(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	testutil.WriteFile(t, cwd, "site/notes.txt", "mine")

	res := runIn(t, "", "site")
	assert.Equal(t, oerrors.ExitFailure, res.code)
	assert.Contains(t, res.stderr, "--force")
	assert.Equal(t, []string{"notes.txt"}, testutil.Names(t, filepath.Join(cwd, "site")))

	res = runIn(t, "", "site", "--force")
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "non-empty directory")
	assert.FileExists(t, filepath.Join(cwd, "site", "main.go"))
	assert.FileExists(t, filepath.Join(cwd, "site", "notes.txt"))
}

func TestGitOnlyDirectoryIsEmpty(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	require.NoError(t, os.MkdirAll(filepath.Join("site", ".git"), 0o755))

	res := runIn(t, "", "site")
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
}

func TestPathIsAFile(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)
	require.NoError(t, os.WriteFile("taken", []byte("x"), 0o644))

	res := runIn(t, "", "taken")
	assert.Equal(t, oerrors.ExitFailure, res.code)
	assert.Contains(t, res.stderr, "unusable project directory")
	assert.Equal(t, []string{"taken"}, testutil.Names(t, cwd))
}

func TestFeatureFlags(t *testing.T) {
	tests := []struct {
		args       []string
		wantTwind  bool
		wantVSCode bool
	}{
		{nil, false, false},
		{[]string{"--twind"}, true, false},
		{[]string{"--vscode"}, false, true},
		{[]string{"--vscode", "--twind"}, true, true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"flags"}, tt.args...), " "), func(t *testing.T) {
			cwd, res := run(t, "", append([]string{"app"}, tt.args...)...)
			require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)

			dir := filepath.Join(cwd, "app")
			assertExists(t, filepath.Join(dir, "twind.config.yaml"), tt.wantTwind)
			assertExists(t, filepath.Join(dir, ".vscode", "settings.json"), tt.wantVSCode)
			assertExists(t, filepath.Join(dir, ".gitignore"), tt.wantVSCode)
		})
	}
}

func assertExists(t *testing.T, path string, want bool) {
	t.Helper()
	if want {
		assert.FileExists(t, path)
	} else {
		assert.NoFileExists(t, path)
	}
}

func TestFeatureEnvAndConfig(t *testing.T) {
	cfgFile := testutil.WriteFile(t, t.TempDir(), "config.yaml", "defaults:\n  vscode: true\n  twind: true\n")

	t.Run("config defaults", func(t *testing.T) {
		cwd, res := run(t, "", "app", "--config", cfgFile)
		require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
		assert.FileExists(t, filepath.Join(cwd, "app", ".gitignore"))
		assert.FileExists(t, filepath.Join(cwd, "app", "twind.config.yaml"))
	})

	t.Run("env beats config", func(t *testing.T) {
		t.Setenv(config.EnvTwind, "false")
		cwd, res := run(t, "", "app", "--config", cfgFile)
		require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
		assert.NoFileExists(t, filepath.Join(cwd, "app", "twind.config.yaml"))
		assert.FileExists(t, filepath.Join(cwd, "app", ".gitignore"))
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv(config.EnvTwind, "false")
		cwd, res := run(t, "", "app", "--twind")
		require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
		assert.FileExists(t, filepath.Join(cwd, "app", "twind.config.yaml"))
	})

	t.Run("invalid env", func(t *testing.T) {
		t.Setenv(config.EnvVSCode, "sometimes")
		cwd, res := run(t, "", "app")
		assert.Equal(t, oerrors.ExitFailure, res.code)
		assert.Contains(t, res.stderr, config.EnvVSCode)
		assert.Empty(t, testutil.Names(t, cwd))
	})
}

func TestWithoutHomeDirectory(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")

	t.Run("no config", func(t *testing.T) {
		t.Setenv(config.EnvConfigFile, "")
		cwd := t.TempDir()
		t.Chdir(cwd)

		root := NewRootCmd()
		var stdout, stderr bytes.Buffer
		root.SetIn(strings.NewReader(""))
		root.SetOut(&stdout)
		root.SetErr(&stderr)
		root.SetArgs([]string{"."})

		require.NoError(t, root.Execute(), stderr.String())
		assert.FileExists(t, filepath.Join(cwd, "go.mod"))
	})

	t.Run("explicit config", func(t *testing.T) {
		cfgFile := testutil.WriteFile(t, t.TempDir(), "config.yaml", "defaults:\n  twind: true\n")
		cwd, res := run(t, "", "app", "--config", cfgFile)
		require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
		assert.FileExists(t, filepath.Join(cwd, "app", "twind.config.yaml"))
	})
}

func TestInvalidConfigFile(t *testing.T) {
	cfgFile := testutil.WriteFile(t, t.TempDir(), "config.yaml", "defaults:\n  twind: sure\n")

	cwd, res := run(t, "", "app", "--config", cfgFile)
	assert.Equal(t, oerrors.ExitFailure, res.code)
	assert.Contains(t, res.stderr, "invalid config file")
	assert.Empty(t, testutil.Names(t, cwd))
}

func TestModuleAndRuntimeFlags(t *testing.T) {
	cwd, res := run(t, "", "app", "--module", "github.com/acme/app", "--runtime-replace", "../fresh")
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)

	gomod := testutil.ReadFile(t, cwd, "app/go.mod")
	assert.Contains(t, gomod, "module github.com/acme/app\n")
	assert.Contains(t, gomod, "=> "+filepath.ToSlash(filepath.Join(filepath.Dir(cwd), "fresh")))
}

func TestInvalidModulePath(t *testing.T) {
	cwd, res := run(t, "", "app", "--module", "not a path")
	assert.Equal(t, oerrors.ExitFailure, res.code)
	assert.Contains(t, res.stderr, "--module")
	assert.Empty(t, testutil.Names(t, cwd))
}

func TestRuntimeVersionFromEnv(t *testing.T) {
	t.Setenv(config.EnvRuntimeVersion, "v9.8.7")
	cwd, res := run(t, "", "app")
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)

	assert.Contains(t, testutil.ReadFile(t, cwd, "app/go.mod"), "github.com/Sumangal44/fresh v9.8.7")
}

func TestInvalidRuntimeVersionFromEnv(t *testing.T) {
	t.Setenv(config.EnvRuntimeVersion, "latest")
	cwd, res := run(t, "", "app")
	assert.Equal(t, oerrors.ExitFailure, res.code)
	assert.Contains(t, res.stderr, "invalid runtime settings")
	assert.Empty(t, testutil.Names(t, cwd))
}

func TestFreshDirectoryHasNoWarning(t *testing.T) {
	_, res := run(t, "", "app")
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "non-empty directory")
}

func TestVerboseShowsSettings(t *testing.T) {
	_, res := run(t, "", "app", "--verbose", "--twind")
	require.Equal(t, oerrors.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SETTING")
	assert.Contains(t, res.stdout, "defaults.twind")
	assert.Contains(t, res.stdout, "runtime.version")
	assert.Contains(t, res.stderr, "config value resolved")
}

func TestVersionFlag(t *testing.T) {
	_, res := run(t, "", "--version")
	assert.Equal(t, oerrors.ExitSuccess, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "fresh-init "), res.stdout)
}

func TestHelpListsFlags(t *testing.T) {
	_, res := run(t, "", "--help")
	assert.Equal(t, oerrors.ExitSuccess, res.code)
	for _, flag := range []string{"--twind", "--vscode", "--force", "--module"} {
		assert.Contains(t, res.stdout, flag)
	}
	assert.NotContains(t, res.stdout, "--runtime-replace")
	for _, feat := range features.Vocabulary() {
		assert.Contains(t, res.stdout, feat.Description())
		assert.Contains(t, res.stdout, featureEnv[feat])
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"nil", nil, oerrors.ExitSuccess, ""},
		{"plain", errors.New("boom"), oerrors.ExitFailure, "fresh-init: boom\n"},
		{
			name:     "exit error",
			err:      oerrors.NewExitError(errors.New("bad flag"), 1),
			wantCode: 1,
			wantOut:  "fresh-init: bad flag\n",
		},
		{
			name:     "already printed",
			err:      &oerrors.ExitError{Err: errors.New("shown"), Code: 1, Printed: true},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, PrintError(&buf, tt.err))
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}

func TestCdPath(t *testing.T) {
	assert.Equal(t, "app", cdPath("/work", "/work/app"))
	assert.Equal(t, "/elsewhere/app", cdPath("/work", "/elsewhere/app"))
	assert.Equal(t, "'my app'", cdPath("/work", "/work/my app"))
}
