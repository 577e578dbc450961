package twind

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

const preflight = `*,::before,::after{box-sizing:border-box;border-width:0;border-style:solid;border-color:#e5e7eb}` +
	`html{line-height:1.5;-webkit-text-size-adjust:100%;font-family:ui-sans-serif,system-ui,sans-serif}` +
	`body{margin:0;line-height:inherit}` +
	`h1,h2,h3,p{margin:0}` +
	`button{font-family:inherit;font-size:100%;line-height:inherit;color:inherit;margin:0;padding:0;background-color:transparent;cursor:pointer}` +
	`img,svg{display:block;vertical-align:middle}img{max-width:100%;height:auto}`

var utilities = map[string]string{
	"flex":            "display:flex",
	"block":           "display:block",
	"hidden":          "display:none",
	"flex-col":        "flex-direction:column",
	"flex-grow-1":     "flex-grow:1",
	"items-center":    "align-items:center",
	"gap-2":           "gap:0.5rem",
	"w-full":          "width:100%",
	"w-32":            "width:8rem",
	"h-32":            "height:8rem",
	"max-w-screen-md": "max-width:768px",
	"p-4":             "padding:1rem",
	"px-2":            "padding-left:0.5rem;padding-right:0.5rem",
	"py-1":            "padding-top:0.25rem;padding-bottom:0.25rem",
	"mx-auto":         "margin-left:auto;margin-right:auto",
	"my-6":            "margin-top:1.5rem;margin-bottom:1.5rem",
	"font-bold":       "font-weight:700",
	"font-normal":     "font-weight:400",
	"text-xl":         "font-size:1.25rem;line-height:1.75rem",
	"text-center":     "text-align:center",
	"border-2":        "border-width:2px",
	"border-gray-200": "border-color:#e5e7eb",
	"rounded":         "border-radius:0.25rem",
	"bg-white":        "background-color:#fff",
	"bg-gray-200":     "background-color:#e5e7eb",
	"opacity-50":      "opacity:0.5",
}

var variants = map[string]string{
	"hover":    ":hover",
	"focus":    ":focus",
	"active":   ":active",
	"disabled": ":disabled",
}

// Sheet resolves utility classes to CSS. It is safe for concurrent use.
type Sheet struct {
	preflight bool
	rules     map[string]string
}

// New builds a sheet from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *Sheet {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rules := make(map[string]string, len(utilities)+len(cfg.Rules))
	for k, v := range utilities {
		rules[k] = v
	}
	for k, v := range cfg.Rules {
		rules[k] = v
	}
	return &Sheet{preflight: cfg.Preflight, rules: rules}
}

// Rule returns the CSS rule for class, or false for unknown classes.
func (s *Sheet) Rule(class string) (string, bool) {
	base, pseudo := class, ""
	if prefix, rest, ok := strings.Cut(class, ":"); ok {
		p, known := variants[prefix]
		if !known {
			return "", false
		}
		base, pseudo = rest, p
	}
	decl, ok := s.rules[base]
	if !ok {
		return "", false
	}
	return "." + escapeClass(class) + pseudo + "{" + decl + "}", true
}

// CSS returns the stylesheet for markup: preflight if enabled, then one rule
// per known class in sorted order.
func (s *Sheet) CSS(markup string) string {
	var b strings.Builder
	if s.preflight {
		b.WriteString(preflight)
	}
	for _, class := range Classes(markup) {
		if rule, ok := s.Rule(class); ok {
			b.WriteString(rule)
		}
	}
	return b.String()
}

// Classes returns the distinct class names used in markup, sorted.
func Classes(markup string) []string {
	seen := map[string]bool{}
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		_, more := z.TagName()
		for more {
			var key, val []byte
			key, val, more = z.TagAttr()
			if string(key) == "class" {
				for _, c := range strings.Fields(string(val)) {
					seen[c] = true
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// escapeClass escapes characters that are not valid in a CSS identifier.
func escapeClass(class string) string {
	var b strings.Builder
	for i, r := range class {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-', r >= 0x80:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteString(`\3` + string(r) + " ")
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
