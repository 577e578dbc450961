package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumangal44/fresh/internal/config"
	oerrors "github.com/Sumangal44/fresh/internal/errors"
	"github.com/Sumangal44/fresh/internal/features"
	"github.com/Sumangal44/fresh/internal/output"
	"github.com/Sumangal44/fresh/internal/prompt"
	"github.com/Sumangal44/fresh/internal/target"
	"github.com/Sumangal44/fresh/internal/templates"
	"github.com/Sumangal44/fresh/internal/version"
)

func runInit(cmd *cobra.Command, args []string, f *flags, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return oerrors.NewResolutionError("cannot determine working directory", "", err)
	}

	opts := target.Options{Cwd: cwd, Prompter: p, Force: f.force}
	if len(args) == 1 {
		opts.Arg, opts.HasArg = args[0], true
	}
	t, err := target.Resolve(opts)
	if err != nil {
		return err
	}
	if t.Existed && !t.Empty {
		output.Warn("writing into a non-empty directory; files with the same names are overwritten", "dir", t.Dir)
	}

	set, settings, err := resolveFeatures(cmd, f, cfg, p)
	if err != nil {
		return err
	}

	runtimeVersion := config.ResolveString(config.StringOptions{
		Key:     "runtime.version",
		EnvVar:  config.EnvRuntimeVersion,
		Config:  cfg.Runtime.Version,
		Default: version.DefaultRuntimeVersion(),
	})
	var replaceFlag *string
	if cmd.Flags().Changed("runtime-replace") {
		replaceFlag = &f.runtimeReplace
	}
	runtimeReplace := config.ResolveString(config.StringOptions{
		Key:    "runtime.replace",
		Flag:   replaceFlag,
		EnvVar: config.EnvRuntimeReplace,
		Config: cfg.Runtime.Replace,
	})
	config.LogResolvedValues(runtimeVersion, runtimeReplace)
	settings = append(settings, setting(runtimeVersion), setting(runtimeReplace))
	if err := validateRuntime(runtimeVersion.String(), runtimeReplace.String()); err != nil {
		return err
	}

	replace := runtimeReplace.String()
	if replace != "" {
		if replace, err = config.ExpandPath(replace); err != nil {
			return oerrors.NewValidationError(fmt.Sprintf("invalid runtime replace path: %v", err), "")
		}
		if !filepath.IsAbs(replace) {
			replace = filepath.Join(cwd, replace)
		}
	}

	gen := templates.NewGenerator(templates.GenerateOptions{
		TargetDir:      t.Dir,
		ProjectName:    t.Name,
		ModulePath:     f.module,
		Features:       set,
		RuntimeModule:  version.RuntimeModule,
		RuntimeVersion: runtimeVersion.String(),
		RuntimeReplace: replace,
	})

	var result *templates.GenerateResult
	err = output.RunWithSpinner(cmd.Context(), "Creating project...", func(ctx context.Context) error {
		var genErr error
		result, genErr = gen.Generate(ctx)
		return genErr
	})
	if err != nil {
		return err
	}

	if err := printSummary(cmd, cwd, t, result, set); err != nil {
		return err
	}
	if f.verbose {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), output.RenderSettingsTable(settings))
	}
	return nil
}

// validateRuntime checks the resolved runtime settings against the config
// schema, so values from the environment get the same checks as the file.
func validateRuntime(ver, replace string) error {
	v, err := config.NewValidator()
	if err != nil {
		return err
	}
	resolved := &config.Config{Runtime: config.RuntimeConfig{Version: ver, Replace: replace}}
	if err := v.Validate(resolved); err != nil {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid runtime settings: %v", err),
			"Set "+config.EnvRuntimeVersion+" to a release such as v1.2.3",
		)
	}
	return nil
}

func setting(v config.ResolvedValue) output.Setting {
	return output.Setting{Key: v.Key, Value: fmt.Sprint(v.Value), Source: string(v.Source)}
}

// resolveFeatures decides every feature: flag > env > config file, then a
// question when a human can answer, else off.
func resolveFeatures(cmd *cobra.Command, f *flags, cfg *config.Config, p prompt.Prompter) (features.Set, []output.Setting, error) {
	flagValues := map[features.Flag]*bool{}
	for feat, v := range f.features {
		if cmd.Flags().Changed(string(feat)) {
			flagValues[feat] = output.BoolPtr(*v)
		}
	}
	var set features.Set
	var settings []output.Setting
	for _, feat := range features.Vocabulary() {
		resolved, err := config.ResolveBool(config.BoolOptions{
			Key:    "defaults." + string(feat),
			Flag:   flagValues[feat],
			EnvVar: featureEnv[feat],
			Config: cfg.FeatureDefault(feat),
		})
		if err != nil {
			return features.Set{}, nil, oerrors.NewValidationError(err.Error(), "")
		}
		config.LogResolvedValues(resolved)

		enabled := resolved.Bool()
		source := string(resolved.Source)
		if !resolved.Decided() && p.Interactive() {
			answer, err := p.Confirm(feat.Prompt())
			if err != nil {
				if errors.Is(err, prompt.ErrNoAnswer) {
					return features.Set{}, nil, oerrors.NewValidationError("aborted", "")
				}
				return features.Set{}, nil, err
			}
			enabled, source = answer, "prompt"
		}
		if enabled {
			set = set.With(feat)
		}
		settings = append(settings, output.Setting{Key: resolved.Key, Value: fmt.Sprint(enabled), Source: source})
	}
	return set, settings, nil
}

func printSummary(cmd *cobra.Command, cwd string, t *target.Target, result *templates.GenerateResult, set features.Set) error {
	out := cmd.OutOrStdout()

	tree, err := output.RenderTree(t.Name, result.Entries)
	if err != nil {
		return err
	}

	msg := "Created " + output.StyleNoun.Render(result.ModulePath) + " in " + output.StyleNoun.Render(t.Dir)
	if !set.Empty() {
		msg += " with " + output.StyleNoun.Render(set.String())
	}
	fmt.Fprintln(out, output.FormatCheckmark(msg))
	fmt.Fprintln(out)
	fmt.Fprint(out, tree)
	fmt.Fprintln(out)

	var steps []string
	if t.Dir != cwd {
		steps = append(steps, "cd "+cdPath(cwd, t.Dir))
	}
	steps = append(steps, "go mod tidy", "go run .")
	fmt.Fprint(out, output.FormatNextSteps("Next steps:", steps))
	return nil
}

// cdPath returns dir relative to cwd when it is below it, else dir itself.
// Paths with spaces are quoted.
func cdPath(cwd, dir string) string {
	p := dir
	if rel, err := filepath.Rel(cwd, dir); err == nil && !strings.HasPrefix(rel, "..") {
		p = rel
	}
	if strings.ContainsAny(p, " \t'\"") {
		p = "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
	}
	return p
}
