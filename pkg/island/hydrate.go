package island

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ErrHydrationMismatch is returned when server markup disagrees with the
// snapshot. It is never recovered from by patching the markup.
var ErrHydrationMismatch = errors.New("hydration mismatch")

// Live is a hydrated island over a parsed document. It mirrors what the
// browser runtime does: dispatching an action updates the state and the text
// of every bound element.
type Live struct {
	Key  string
	Name string
	Root *html.Node

	state    State
	actions  Actions
	bound    []*html.Node
	controls []*html.Node
}

// Hydrate finds every island in doc and attaches it to its snapshot entry.
// A document without islands hydrates to nothing.
func Hydrate(doc *html.Node) ([]*Live, error) {
	roots := findAll(doc, func(n *html.Node) bool { return hasAttr(n, AttrIsland) })
	script := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script" && attr(n, "id") == StateScriptID
	})
	if script == nil {
		if len(roots) > 0 {
			return nil, fmt.Errorf("%w: %d islands but no state script", ErrHydrationMismatch, len(roots))
		}
		return nil, nil
	}

	snap, err := DecodeSnapshot([]byte(textContent(script)))
	if err != nil {
		return nil, err
	}
	entries := make(map[string]Entry, len(snap.Islands))
	for _, e := range snap.Islands {
		entries[e.Key] = e
	}

	lives := make([]*Live, 0, len(roots))
	for _, root := range roots {
		live, err := attach(root, entries)
		if err != nil {
			return nil, err
		}
		lives = append(lives, live)
	}
	return lives, nil
}

func attach(root *html.Node, entries map[string]Entry) (*Live, error) {
	key, name := attr(root, AttrKey), attr(root, AttrIsland)
	entry, ok := entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: island %s key %q has no snapshot entry", ErrHydrationMismatch, name, key)
	}
	if entry.Name != name {
		return nil, fmt.Errorf("%w: key %q is %s in markup but %s in snapshot", ErrHydrationMismatch, key, name, entry.Name)
	}

	live := &Live{
		Key:      key,
		Name:     name,
		Root:     root,
		state:    entry.State.Clone(),
		actions:  entry.Actions,
		bound:    owned(root, AttrBind),
		controls: owned(root, AttrOnClick),
	}

	for _, el := range live.bound {
		bind := attr(el, AttrBind)
		got := strings.TrimSpace(textContent(el))
		want := strings.TrimSpace(FormatValue(live.state[bind]))
		if got != want {
			return nil, fmt.Errorf("%w: island %s key %s: %q shows %q, snapshot has %q",
				ErrHydrationMismatch, name, key, bind, got, want)
		}
	}
	for _, el := range live.controls {
		if action := attr(el, AttrOnClick); live.actions[action] == nil {
			return nil, fmt.Errorf("%w: island %s key %s: unknown action %q", ErrHydrationMismatch, name, key, action)
		}
	}
	return live, nil
}

// State returns a copy of the current state.
func (l *Live) State() State {
	return l.state.Clone()
}

// Text returns the displayed text of the first element bound to key.
func (l *Live) Text(key string) string {
	for _, el := range l.bound {
		if attr(el, AttrBind) == key {
			return textContent(el)
		}
	}
	return ""
}

// Controls returns the action names of the island's controls in document
// order.
func (l *Live) Controls() []string {
	out := make([]string, len(l.controls))
	for i, el := range l.controls {
		out[i] = attr(el, AttrOnClick)
	}
	return out
}

// Dispatch runs the named action and re-renders bound text.
func (l *Live) Dispatch(action string) error {
	ops, ok := l.actions[action]
	if !ok {
		return fmt.Errorf("island %s: unknown action %q", l.Name, action)
	}
	next, err := Apply(l.state, ops)
	if err != nil {
		return fmt.Errorf("island %s: %w", l.Name, err)
	}
	l.state = next
	for _, el := range l.bound {
		setText(el, FormatValue(l.state[attr(el, AttrBind)]))
	}
	return nil
}

// Click dispatches the action of the i-th control.
func (l *Live) Click(i int) error {
	if i < 0 || i >= len(l.controls) {
		return fmt.Errorf("island %s: no control %d", l.Name, i)
	}
	return l.Dispatch(attr(l.controls[i], AttrOnClick))
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if all := findAll(n, match); len(all) > 0 {
		return all[0]
	}
	return nil
}
