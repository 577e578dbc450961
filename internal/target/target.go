// Package target resolves the directory a project is generated into.
package target

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	oerrors "github.com/Sumangal44/fresh/internal/errors"
	"github.com/Sumangal44/fresh/internal/output"
	"github.com/Sumangal44/fresh/internal/prompt"
)

// PromptText is the question asked when no directory argument is given.
const PromptText = "Enter your project directory"

// CurrentDir is the argument that selects the working directory.
const CurrentDir = "."

// Target is a resolved project directory.
type Target struct {
	// Dir is the absolute, cleaned directory path.
	Dir string

	// Name is the base name of Dir, used for the module path and summary.
	Name string

	// Existed reports whether Dir was present before generation.
	Existed bool

	// Empty reports whether Dir had no entries besides .git.
	Empty bool
}

// Options controls Resolve.
type Options struct {
	// Arg is the positional argument. Ignored when HasArg is false.
	Arg    string
	HasArg bool

	// Cwd anchors relative paths. Defaults to os.Getwd.
	Cwd string

	// Prompter asks for the directory and for overwrite confirmation.
	Prompter prompt.Prompter

	// Force accepts a non-empty directory without asking.
	Force bool
}

// Resolve turns the argument into a usable Target without touching the
// filesystem beyond reading it.
func Resolve(opts Options) (*Target, error) {
	cwd := opts.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, oerrors.NewResolutionError("cannot determine working directory", "", err)
		}
		cwd = wd
	}

	arg := opts.Arg
	if !opts.HasArg {
		answer, err := opts.Prompter.Input(PromptText, "my-project")
		if err != nil {
			if errors.Is(err, prompt.ErrNoAnswer) {
				return nil, oerrors.NewValidationError(
					"no project directory given",
					"Pass the directory as an argument, e.g. 'fresh-init my-project', or '.' for the current directory",
				)
			}
			return nil, err
		}
		arg = answer
	}
	if arg == "" {
		return nil, oerrors.NewValidationError("project directory must not be empty", "")
	}

	dir := cwd
	if arg != CurrentDir {
		dir = arg
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
	}
	dir = filepath.Clean(dir)

	t := &Target{Dir: dir, Name: filepath.Base(dir)}
	if err := inspect(t); err != nil {
		return nil, err
	}
	output.Debug("resolved project directory", "dir", t.Dir, "existed", t.Existed, "empty", t.Empty)

	if t.Existed && !t.Empty && !opts.Force {
		if err := confirmOverwrite(t, opts.Prompter); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func inspect(t *Target) error {
	info, err := os.Stat(t.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.Empty = true
			return nil
		}
		return oerrors.NewResolutionError("cannot inspect project directory", t.Dir, err)
	}
	if !info.IsDir() {
		return oerrors.NewResolutionError("path exists and is not a directory", t.Dir, nil)
	}

	t.Existed = true
	entries, err := os.ReadDir(t.Dir)
	if err != nil {
		return oerrors.NewResolutionError("cannot read project directory", t.Dir, err)
	}
	t.Empty = isEmpty(entries)
	return nil
}

// isEmpty treats a directory holding only a .git entry as empty, so a fresh
// `git init` does not block generation.
func isEmpty(entries []fs.DirEntry) bool {
	for _, e := range entries {
		if e.Name() != ".git" {
			return false
		}
	}
	return true
}

func confirmOverwrite(t *Target, p prompt.Prompter) error {
	notEmpty := oerrors.NewValidationError(
		fmt.Sprintf("directory %s is not empty", t.Dir),
		"Use --force to generate into it anyway; existing files with the same names are overwritten",
	)
	if p == nil || !p.Interactive() {
		return notEmpty
	}

	ok, err := p.Confirm("The target directory is not empty (files could get overwritten). Do you want to continue anyway?")
	if err != nil && !errors.Is(err, prompt.ErrNoAnswer) {
		return err
	}
	if !ok {
		return notEmpty
	}
	return nil
}
