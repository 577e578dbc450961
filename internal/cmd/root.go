// Package cmd implements the fresh-init command line.
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumangal44/fresh/internal/config"
	oerrors "github.com/Sumangal44/fresh/internal/errors"
	"github.com/Sumangal44/fresh/internal/features"
	"github.com/Sumangal44/fresh/internal/output"
	"github.com/Sumangal44/fresh/internal/version"
)

// ToolName prefixes every error message.
const ToolName = "fresh-init"

// featureEnv names the environment variable for each feature flag.
var featureEnv = map[features.Flag]string{
	features.Twind:  config.EnvTwind,
	features.VSCode: config.EnvVSCode,
}

// flags holds the parsed command line. A fresh value backs every root
// command so tests do not share state.
type flags struct {
	features       map[features.Flag]*bool
	force          bool
	module         string
	configPath     string
	verbose        bool
	timestamps     bool
	runtimeReplace string
}

// NewRootCmd creates the fresh-init command.
func NewRootCmd() *cobra.Command {
	f := &flags{features: map[features.Flag]*bool{}}
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   ToolName + " [directory]",
		Short: "Create a new fresh project",
		Long: `Create a new fresh project: a Go web server with server-rendered pages
and interactive islands.

The directory may be a relative or absolute path, or '.' for the current
directory. Without one, you are asked for it.

Examples:
  # Create a project in ./my-project
  fresh-init my-project

  # Use the current directory, with utility CSS and VS Code settings
  fresh-init . --twind --vscode`,
		Args:          validateArgs,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := initializeGlobals(cmd, f)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, f, cfg)
		},
	}
	rootCmd.SetVersionTemplate(versionTemplate())
	rootCmd.SetFlagErrorFunc(flagError)

	fs := rootCmd.Flags()
	for _, feat := range features.Vocabulary() {
		f.features[feat] = new(bool)
		fs.BoolVar(f.features[feat], string(feat), false,
			fmt.Sprintf("%s (env: %s)", feat.Description(), featureEnv[feat]))
	}
	fs.BoolVar(&f.force, "force", false, "Write into a non-empty directory without asking")
	fs.StringVar(&f.module, "module", "", "Go module path for the project (default: example.com/<directory>)")
	fs.StringVar(&f.configPath, "config", "", "Path to config file (env: FRESH_CONFIG)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose output")
	fs.BoolVar(&f.timestamps, "timestamps", false, "Show timestamps in log output (env: FRESH_LOG_TIMESTAMPS)")
	fs.StringVar(&f.runtimeReplace, "runtime-replace", "", "Local runtime checkout to use via a go.mod replace directive (env: FRESH_RUNTIME_REPLACE)")
	_ = fs.MarkHidden("runtime-replace")

	return rootCmd
}

func validateArgs(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return oerrors.NewExitError(oerrors.NewValidationError(
			fmt.Sprintf("expected at most one directory, got %d arguments", len(args)),
			"Quote paths that contain spaces",
		), oerrors.ExitFailure)
	}
	return nil
}

func flagError(_ *cobra.Command, err error) error {
	return oerrors.NewExitError(oerrors.NewValidationError(
		err.Error(),
		"Run '"+ToolName+" --help' for usage",
	), oerrors.ExitFailure)
}

// initializeGlobals loads the config file and sets up logging.
func initializeGlobals(cmd *cobra.Command, f *flags) (*config.Config, error) {
	configPath := config.ResolveConfigPath(f.configPath)

	loader, err := config.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("initializing config loader: %w", err)
	}
	cfg, err := loader.Load(configPath.String())
	if err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("invalid config file: %v", err),
			"Fix or remove "+configPath.String(),
		)
	}

	var timestampsFlag *bool
	if cmd.Flags().Changed("timestamps") {
		timestampsFlag = output.BoolPtr(f.timestamps)
	}
	timestamps, err := config.ResolveBool(config.BoolOptions{
		Key:    "log.timestamps",
		Flag:   timestampsFlag,
		EnvVar: config.EnvTimestamps,
		Config: cfg.Log.Timestamps,
	})
	if err != nil {
		return nil, oerrors.NewValidationError(err.Error(), "")
	}

	logCfg := output.LogConfig{Verbose: f.verbose}
	if timestamps.Decided() {
		logCfg.Timestamps = output.BoolPtr(timestamps.Bool())
	}
	output.SetupLoggingTo(cmd.ErrOrStderr(), logCfg)

	config.LogResolvedValues(configPath, timestamps)
	return cfg, nil
}

// PrintError writes err to w unless it was already printed, and returns
// the process exit code.
func PrintError(w io.Writer, err error) int {
	if err == nil {
		return oerrors.ExitSuccess
	}

	var exitErr *oerrors.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Printed {
		fmt.Fprintf(w, "%s: %v\n", ToolName, err)
	}
	return oerrors.ExitCodeFromError(err)
}
