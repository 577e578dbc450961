// Package island renders interactive page fragments on the server and brings
// them back to life from a JSON snapshot.
//
// A rendered island is a single root element carrying data-frsh-island and
// data-frsh-key. Inside it, elements with data-bind="key" display a state
// value and elements with data-on-click="name" run a named Action. The page
// embeds every island's state and actions in a Snapshot; the browser runtime
// (ClientScript) and Hydrate both start from that snapshot and nothing else.
package island

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup attributes and identifiers shared with the browser runtime.
const (
	AttrIsland  = "data-frsh-island"
	AttrKey     = "data-frsh-key"
	AttrBind    = "data-bind"
	AttrOnClick = "data-on-click"

	StateScriptID    = "__FRSH_STATE"
	ClientScriptPath = "/_frsh/js/island.js"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Spec defines an island.
type Spec struct {
	// Name identifies the island in markup and in the snapshot.
	Name string

	// Template is an html/template rendered with the island's State.
	// It must produce exactly one root element.
	Template string

	// Funcs are made available to Template.
	Funcs template.FuncMap

	// Actions are the handlers controls can trigger.
	Actions Actions
}

// Island is a compiled island definition. It is safe for concurrent use.
type Island struct {
	name    string
	tmpl    *template.Template
	actions Actions
}

// Define compiles spec.
func Define(spec Spec) (*Island, error) {
	if !namePattern.MatchString(spec.Name) {
		return nil, fmt.Errorf("invalid island name %q", spec.Name)
	}
	if err := spec.Actions.validate(); err != nil {
		return nil, fmt.Errorf("island %s: %w", spec.Name, err)
	}

	tmpl, err := template.New(spec.Name).Funcs(spec.Funcs).Parse(spec.Template)
	if err != nil {
		return nil, fmt.Errorf("island %s: parsing template: %w", spec.Name, err)
	}

	return &Island{
		name:    spec.Name,
		tmpl:    tmpl,
		actions: spec.Actions.clone(),
	}, nil
}

// MustDefine is like Define but panics on error. Intended for package-level
// island variables.
func MustDefine(spec Spec) *Island {
	i, err := Define(spec)
	if err != nil {
		panic(err)
	}
	return i
}

// Name returns the island name.
func (i *Island) Name() string {
	return i.name
}

// Actions returns a copy of the island's actions.
func (i *Island) Actions() Actions {
	return i.actions.clone()
}

// Render executes the template with state and marks the root element with
// the island name and key. Bound elements are filled from state so their text
// is exactly what the browser will compare against.
func (i *Island) Render(key string, state State) (template.HTML, error) {
	out, _, err := i.RenderEntry(key, state)
	return out, err
}

// RenderEntry is Render that also returns the snapshot entry for the
// instance. The template sees state as given; bound text and the entry both
// come from the normalized state, so markup and snapshot always agree.
func (i *Island) RenderEntry(key string, state State) (template.HTML, Entry, error) {
	normalized, err := state.Normalize()
	if err != nil {
		return "", Entry{}, fmt.Errorf("island %s: %w", i.name, err)
	}

	var buf bytes.Buffer
	if err := i.tmpl.Execute(&buf, state); err != nil {
		return "", Entry{}, fmt.Errorf("island %s: executing template: %w", i.name, err)
	}

	root, err := parseRoot(buf.String())
	if err != nil {
		return "", Entry{}, fmt.Errorf("island %s: %w", i.name, err)
	}
	setAttr(root, AttrIsland, i.name)
	setAttr(root, AttrKey, key)

	for _, el := range owned(root, AttrBind) {
		bind := attr(el, AttrBind)
		value, ok := normalized[bind]
		if !ok {
			return "", Entry{}, fmt.Errorf("island %s: bound key %q is not in state", i.name, bind)
		}
		setText(el, FormatValue(value))
	}
	for _, el := range owned(root, AttrOnClick) {
		if name := attr(el, AttrOnClick); i.actions[name] == nil {
			return "", Entry{}, fmt.Errorf("island %s: control refers to unknown action %q", i.name, name)
		}
	}

	var out bytes.Buffer
	if err := html.Render(&out, root); err != nil {
		return "", Entry{}, fmt.Errorf("island %s: rendering: %w", i.name, err)
	}
	entry := Entry{Key: key, Name: i.name, State: normalized, Actions: i.actions.clone()}
	return template.HTML(out.String()), entry, nil //nolint:gosec // produced by html.Render
}

func parseRoot(markup string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	var root *html.Node
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			if root != nil {
				return nil, fmt.Errorf("template must produce a single root element")
			}
			root = n
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return nil, fmt.Errorf("template must produce a single root element, found text %q", strings.TrimSpace(n.Data))
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("template produced no element")
	}
	return root, nil
}

// owned returns the elements under root, root included, carrying attribute
// key and not inside another island.
func owned(root *html.Node, key string) []*html.Node {
	var out []*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n != root && hasAttr(n, AttrIsland) {
				return
			}
			if hasAttr(n, key) {
				out = append(out, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return out
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
