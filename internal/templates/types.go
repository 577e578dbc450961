// Package templates composes the starter project tree from the catalog and
// writes it to disk.
package templates

import "github.com/Sumangal44/fresh/internal/features"

// TemplateData holds the data passed to content rules.
type TemplateData struct {
	// ProjectName is the target directory's base name.
	ProjectName string

	// ModulePath is the Go module path of the generated project.
	ModulePath string

	// RuntimeModule is the module path of the fresh runtime.
	RuntimeModule string

	// RuntimeVersion is the runtime version required in go.mod.
	RuntimeVersion string

	// RuntimeReplace, when set, becomes a replace directive in go.mod.
	RuntimeReplace string

	// Twind and VSCode mirror the enabled feature set.
	Twind  bool
	VSCode bool
}

// GenerateOptions configures project generation.
type GenerateOptions struct {
	// TargetDir is the absolute directory to generate into.
	TargetDir string

	// ProjectName defaults to the base name of TargetDir.
	ProjectName string

	// ModulePath defaults to a path derived from ProjectName.
	ModulePath string

	// Features selects the deltas applied to the base tree.
	Features features.Set

	// RuntimeModule and RuntimeVersion describe the runtime dependency.
	RuntimeModule  string
	RuntimeVersion string

	// RuntimeReplace points the generated go.mod at a local runtime checkout.
	RuntimeReplace string

	// Catalog overrides the default catalog.
	Catalog *Catalog
}

// GenerateResult describes a written project.
type GenerateResult struct {
	// TargetDir is the directory where files were created.
	TargetDir string

	// ModulePath is the module path written to go.mod.
	ModulePath string

	// Entries lists every written path in write order, slash separated and
	// relative to TargetDir. Directories end in "/".
	Entries []string

	// Files lists only the written files.
	Files []string
}
