package templates

import (
	"path"
	"strings"
)

// Node is a file or directory in a project tree. Directories have a nil Rule.
type Node struct {
	Name     string
	Rule     Rule
	Children []*Node
}

// File creates a file node whose content is produced by rule.
func File(name string, rule Rule) *Node {
	if rule == nil {
		panic("templates: file " + name + " has no content rule")
	}
	return &Node{Name: name, Rule: rule}
}

// Dir creates a directory node.
func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool {
	return n.Rule == nil
}

// Child returns the direct child called name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) childIndex(name string) int {
	for i, c := range n.Children {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the descendant at slash path p, or nil. "" is n itself.
func (n *Node) Lookup(p string) *Node {
	if p == "" {
		return n
	}
	cur := n
	for _, part := range strings.Split(p, "/") {
		if cur == nil || !cur.IsDir() {
			return nil
		}
		cur = cur.Child(part)
	}
	return cur
}

// Clone returns a deep copy of n. Rules are shared; they are immutable.
func (n *Node) Clone() *Node {
	out := &Node{Name: n.Name, Rule: n.Rule}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Walk visits every descendant of n in pre-order, passing its slash path.
func (n *Node) Walk(fn func(p string, node *Node) error) error {
	return n.walk("", fn)
}

func (n *Node) walk(prefix string, fn func(string, *Node) error) error {
	for _, c := range n.Children {
		p := path.Join(prefix, c.Name)
		if err := fn(p, c); err != nil {
			return err
		}
		if c.IsDir() {
			if err := c.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Entries lists descendant paths in pre-order. Directories end in "/".
func (n *Node) Entries() []string {
	var out []string
	_ = n.Walk(func(p string, node *Node) error {
		if node.IsDir() {
			p += "/"
		}
		out = append(out, p)
		return nil
	})
	return out
}
