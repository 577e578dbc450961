package output

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/ddddddO/gtree"
)

// RenderTree renders a directory tree rooted at rootName. entries are slash
// separated paths relative to the root, directories ending in "/", listed
// parents first. Sibling order follows entries order.
func RenderTree(rootName string, entries []string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	root := gtree.NewRoot(StyleNoun.Render(rootName + "/"))
	nodes := map[string]*gtree.Node{"": root}

	for _, entry := range entries {
		isDir := strings.HasSuffix(entry, "/")
		clean := strings.TrimSuffix(entry, "/")
		parent := path.Dir(clean)
		if parent == "." {
			parent = ""
		}

		p, ok := nodes[parent]
		if !ok {
			return "", fmt.Errorf("tree entry %q listed before its parent", entry)
		}

		label := path.Base(clean)
		if isDir {
			label += "/"
		}
		nodes[clean] = p.Add(label)
	}

	var buf bytes.Buffer
	if err := gtree.OutputFromRoot(&buf, root); err != nil {
		return "", fmt.Errorf("rendering tree: %w", err)
	}
	return buf.String(), nil
}
