package templates

import (
	"fmt"

	"github.com/Sumangal44/fresh/internal/features"
)

// Insert adds Node under the directory at Parent ("" for the root). With an
// empty After the node is appended; otherwise it goes right after the sibling
// named After.
type Insert struct {
	Parent string
	After  string
	Node   *Node
}

// Override replaces the content rule of the file at Path.
type Override struct {
	Path string
	Rule Rule
}

// Delta is the structural change one feature makes to the base tree.
type Delta struct {
	Inserts   []Insert
	Overrides []Override
}

// Catalog is a base tree plus a delta per feature.
type Catalog struct {
	Base   *Node
	Deltas map[features.Flag]Delta
}

// Compose applies the deltas of every enabled feature, in vocabulary order,
// to a copy of the base tree. Base nodes keep their relative order.
func (c *Catalog) Compose(set features.Set) (*Node, error) {
	tree := c.Base.Clone()
	for _, f := range set.Flags() {
		delta, ok := c.Deltas[f]
		if !ok {
			continue
		}
		if err := delta.apply(tree); err != nil {
			return nil, fmt.Errorf("applying %s delta: %w", f, err)
		}
	}
	return tree, nil
}

func (d Delta) apply(root *Node) error {
	for _, ins := range d.Inserts {
		parent := root.Lookup(ins.Parent)
		if parent == nil || !parent.IsDir() {
			return fmt.Errorf("insert parent %q is not a directory", ins.Parent)
		}
		if parent.Child(ins.Node.Name) != nil {
			return fmt.Errorf("%q already exists under %q", ins.Node.Name, ins.Parent)
		}

		node := ins.Node.Clone()
		if ins.After == "" {
			parent.Children = append(parent.Children, node)
			continue
		}
		i := parent.childIndex(ins.After)
		if i < 0 {
			return fmt.Errorf("insert anchor %q not found under %q", ins.After, ins.Parent)
		}
		parent.Children = append(parent.Children[:i+1], append([]*Node{node}, parent.Children[i+1:]...)...)
	}

	for _, o := range d.Overrides {
		n := root.Lookup(o.Path)
		if n == nil || n.IsDir() {
			return fmt.Errorf("override target %q is not a file", o.Path)
		}
		n.Rule = o.Rule
	}
	return nil
}

// DefaultCatalog returns the starter project catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Base: Dir("",
			File("README.md", FromTemplate("README.md.tmpl")),
			File("go.mod", FromTemplate("go.mod.tmpl")),
			File("fresh.gen.go", FromTemplate("fresh.gen.go.tmpl")),
			Dir("components",
				File("button.go", FromTemplate("components/button.go.tmpl")),
			),
			Dir("islands",
				File("counter.go", FromTemplate("islands/counter.go.tmpl")),
			),
			File("main.go", FromTemplate("main.go.tmpl")),
			Dir("routes",
				File("greet.go", FromTemplate("routes/greet.go.tmpl")),
				Dir("api",
					File("joke.go", FromTemplate("routes/api/joke.go.tmpl")),
				),
				File("index.go", FromTemplate("routes/index.go.tmpl")),
			),
			Dir("static",
				File("logo.svg", FromStatic("static/logo.svg")),
			),
		),
		Deltas: map[features.Flag]Delta{
			features.Twind: {
				Inserts: []Insert{
					{After: "fresh.gen.go", Node: File("twind.config.yaml", FromTemplate("twind.config.yaml.tmpl"))},
				},
				Overrides: []Override{
					{Path: "main.go", Rule: FromTemplate("main.twind.go.tmpl")},
				},
			},
			features.VSCode: {
				Inserts: []Insert{
					{Node: Dir(".vscode",
						File("settings.json", JSONFromYAML(vscodeSettings)),
						File("extensions.json", JSONFromYAML(vscodeExtensions)),
					)},
					{Node: File(".gitignore", Inline(gitignore))},
				},
			},
		},
	}
}

const vscodeSettings = `
	editor.formatOnSave: true
	"[go]":
	  editor.defaultFormatter: golang.go
	  editor.codeActionsOnSave:
	    source.organizeImports: explicit
	gopls:
	  ui.semanticTokens: true
	files.associations:
	  "*.go.tmpl": gotmpl
`

const vscodeExtensions = `
	recommendations:
	  - golang.go
`

const gitignore = `
	# Environment
	.env
	.env*.local

	# Build output
	/bin/
	/[[.ProjectName]]
`
