package fresh

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Sumangal44/fresh/pkg/island"
	"github.com/Sumangal44/fresh/pkg/twind"
)

// DefaultTitle is used when a page sets none.
const DefaultTitle = "fresh"

// DocumentOptions controls RenderDocument.
type DocumentOptions struct {
	// Sheet, when set, inlines the utility classes used by the body.
	Sheet *twind.Sheet
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
{{- if .CSS}}
<style id="__FRSH_TWIND">{{.CSS}}</style>
{{- end}}
</head>
<body>
{{.Body}}
{{- if .State}}
<script id="{{.StateID}}" type="application/json">{{.State}}</script>
<script type="module" src="{{.ClientPath}}"></script>
{{- end}}
</body>
</html>
`))

type documentData struct {
	Title      string
	CSS        template.CSS
	Body       template.HTML
	State      template.JS
	StateID    string
	ClientPath string
}

// RenderDocument writes the full HTML document for body. Pages without
// islands get no state or client script.
func RenderDocument(w io.Writer, ctx *PageContext, body template.HTML, opts DocumentOptions) error {
	data := documentData{
		Title:      ctx.Title(),
		Body:       body,
		StateID:    island.StateScriptID,
		ClientPath: island.ClientScriptPath,
	}
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if opts.Sheet != nil {
		data.CSS = template.CSS(opts.Sheet.CSS(string(body))) //nolint:gosec // generated from known utilities
	}

	snap := ctx.Snapshot()
	if len(snap.Islands) > 0 {
		state, err := snap.Encode()
		if err != nil {
			return fmt.Errorf("encoding island state: %w", err)
		}
		data.State = template.JS(state) //nolint:gosec // json.Marshal escapes <, > and &
	}

	if err := documentTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}
	return nil
}
