package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	oerrors "github.com/Sumangal44/fresh/internal/errors"
	"github.com/Sumangal44/fresh/internal/features"
	"github.com/Sumangal44/fresh/internal/output"
	"github.com/Sumangal44/fresh/internal/version"
)

// Generator writes a composed project tree to disk.
type Generator struct {
	opts GenerateOptions
}

// NewGenerator creates a new generator with the given options.
func NewGenerator(opts GenerateOptions) *Generator {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.ProjectName == "" {
		opts.ProjectName = filepath.Base(opts.TargetDir)
	}
	if opts.ModulePath == "" {
		opts.ModulePath = DeriveModulePath(opts.ProjectName)
	}
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = version.RuntimeModule
	}
	if opts.RuntimeVersion == "" {
		opts.RuntimeVersion = version.DefaultRuntimeVersion()
	}
	return &Generator{opts: opts}
}

type plannedEntry struct {
	rel     string
	dir     bool
	content []byte
}

// plan composes the tree and renders every file without writing anything.
func (g *Generator) plan() ([]plannedEntry, error) {
	if err := ValidateModulePath(g.opts.ModulePath); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), "Pass a valid Go module path with --module")
	}

	tree, err := g.opts.Catalog.Compose(g.opts.Features)
	if err != nil {
		return nil, fmt.Errorf("composing project tree: %w", err)
	}

	renderer := NewRenderer(g.data())
	var entries []plannedEntry
	err = tree.Walk(func(p string, n *Node) error {
		if n.IsDir() {
			entries = append(entries, plannedEntry{rel: p, dir: true})
			return nil
		}
		content, err := renderer.Render(n.Rule)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", p, err)
		}
		entries = append(entries, plannedEntry{rel: p, content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Generate renders the project and writes it under TargetDir. Directories are
// created before their children and each file is replaced atomically. The
// tree as a whole is not transactional: if a write fails, entries written
// before it stay on disk.
func (g *Generator) Generate(ctx context.Context) (*GenerateResult, error) {
	entries, err := g.plan()
	if err != nil {
		return nil, err
	}

	output.Debug("generating project",
		"target", g.opts.TargetDir,
		"module", g.opts.ModulePath,
		"features", g.opts.Features.String(),
		"entries", len(entries))

	if err := os.MkdirAll(g.opts.TargetDir, 0o755); err != nil {
		return nil, oerrors.NewWriteError("cannot create project directory", g.opts.TargetDir, err)
	}

	result := &GenerateResult{
		TargetDir:  g.opts.TargetDir,
		ModulePath: g.opts.ModulePath,
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, oerrors.NewWriteError("generation interrupted", g.opts.TargetDir, err)
		}

		target := filepath.Join(g.opts.TargetDir, filepath.FromSlash(e.rel))
		if e.dir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return result, oerrors.NewWriteError("cannot create directory", target, err)
			}
			result.Entries = append(result.Entries, e.rel+"/")
			continue
		}

		if err := writeFileAtomic(target, e.content, 0o644); err != nil {
			return result, oerrors.NewWriteError("cannot write file", target, err)
		}
		output.Debug("created file", "path", e.rel)
		result.Entries = append(result.Entries, e.rel)
		result.Files = append(result.Files, e.rel)
	}
	return result, nil
}

func (g *Generator) data() TemplateData {
	return TemplateData{
		ProjectName:    g.opts.ProjectName,
		ModulePath:     g.opts.ModulePath,
		RuntimeModule:  g.opts.RuntimeModule,
		RuntimeVersion: g.opts.RuntimeVersion,
		RuntimeReplace: filepath.ToSlash(g.opts.RuntimeReplace),
		Twind:          g.opts.Features.Has(features.Twind),
		VSCode:         g.opts.Features.Has(features.VSCode),
	}
}
