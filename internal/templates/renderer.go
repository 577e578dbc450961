package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/lithammer/dedent"
	"sigs.k8s.io/yaml"
)

// Payload templates are Go sources that themselves contain html/template
// actions, so catalog templates use [[ ]] delimiters.
const (
	leftDelim  = "[["
	rightDelim = "]]"
)

// Rule produces the content of one file from TemplateData.
type Rule interface {
	render(r *Renderer) ([]byte, error)
}

// Renderer evaluates content rules against TemplateData.
type Renderer struct {
	data TemplateData
	fsys fs.FS
}

// NewRenderer creates a renderer over the embedded payload.
func NewRenderer(data TemplateData) *Renderer {
	return &Renderer{data: data, fsys: payloadFS}
}

// Render evaluates rule.
func (r *Renderer) Render(rule Rule) ([]byte, error) {
	return rule.render(r)
}

// RenderString executes text as a template against the renderer's data.
func (r *Renderer) RenderString(name, text string) ([]byte, error) {
	tmpl, err := template.New(name).
		Delims(leftDelim, rightDelim).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r.data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) readPayload(name string) ([]byte, error) {
	data, err := fs.ReadFile(r.fsys, path.Join("payload", name))
	if err != nil {
		return nil, fmt.Errorf("reading payload %s: %w", name, err)
	}
	return data, nil
}

type templateRule struct{ name string }

// FromTemplate renders payload/<name> as a template.
func FromTemplate(name string) Rule {
	return templateRule{name: name}
}

func (t templateRule) render(r *Renderer) ([]byte, error) {
	text, err := r.readPayload(t.name)
	if err != nil {
		return nil, err
	}
	return r.RenderString(t.name, string(text))
}

type staticRule struct{ name string }

// FromStatic copies payload/<name> verbatim.
func FromStatic(name string) Rule {
	return staticRule{name: name}
}

func (s staticRule) render(r *Renderer) ([]byte, error) {
	return r.readPayload(s.name)
}

type inlineRule struct{ text string }

// Inline renders an indented literal. Common indentation and the leading
// newline are removed.
func Inline(text string) Rule {
	return inlineRule{text: text}
}

func (i inlineRule) render(r *Renderer) ([]byte, error) {
	return r.RenderString("inline", normalize(i.text))
}

type jsonRule struct{ yaml string }

// JSONFromYAML renders a YAML literal and emits it as indented JSON. Keys
// come out sorted.
func JSONFromYAML(text string) Rule {
	return jsonRule{yaml: text}
}

func (j jsonRule) render(r *Renderer) ([]byte, error) {
	src, err := r.RenderString("yaml", normalize(j.yaml))
	if err != nil {
		return nil, err
	}
	raw, err := yaml.YAMLToJSON(src)
	if err != nil {
		return nil, fmt.Errorf("converting YAML to JSON: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func normalize(text string) string {
	out := strings.TrimLeft(dedent.Dedent(text), "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
