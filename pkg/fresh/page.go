package fresh

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/Sumangal44/fresh/pkg/island"
)

// PageContext collects what a page renders: route parameters in, islands and
// the document title out. It is used by a single request.
type PageContext struct {
	params  map[string]string
	title   string
	islands []island.Entry
}

// NewPageContext creates a context for one request.
func NewPageContext(params map[string]string) *PageContext {
	return &PageContext{params: params}
}

// Param returns the route parameter called name.
func (c *PageContext) Param(name string) string {
	return c.params[name]
}

// SetTitle sets the document title.
func (c *PageContext) SetTitle(title string) {
	c.title = title
}

// Title returns the document title.
func (c *PageContext) Title() string {
	return c.title
}

// Island renders isl with state and records it in the page snapshot. Keys
// are assigned in render order.
func (c *PageContext) Island(isl *island.Island, state island.State) (template.HTML, error) {
	key := strconv.Itoa(len(c.islands))
	out, entry, err := isl.RenderEntry(key, state)
	if err != nil {
		return "", err
	}
	c.islands = append(c.islands, entry)
	return out, nil
}

// Render executes t with data.
func (c *PageContext) Render(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template
}

// Snapshot returns the islands rendered so far.
func (c *PageContext) Snapshot() island.Snapshot {
	return island.Snapshot{Islands: append([]island.Entry(nil), c.islands...)}
}

// MustTemplate parses an html/template and panics on error. Intended for
// package-level page templates.
func MustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}
