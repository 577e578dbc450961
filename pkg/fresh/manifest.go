// Package fresh is the page layer of the fresh runtime: the manifest a
// project registers, the per-request page context, and the HTML document
// that carries island state to the browser.
package fresh

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Sumangal44/fresh/pkg/island"
)

// PageFunc renders the body of a page.
type PageFunc func(ctx *PageContext) (template.HTML, error)

// Route binds a fiber path pattern to either a page or a raw handler.
type Route struct {
	// Pattern uses fiber syntax, e.g. "/" or "/:name".
	Pattern string

	// Page renders an HTML document with islands.
	Page PageFunc

	// Handler serves the route directly, e.g. an API endpoint.
	Handler fiber.Handler
}

// Manifest lists everything a project serves. It is usually generated into
// fresh.gen.go.
type Manifest struct {
	Routes  []Route
	Islands []*island.Island
}

// Validate checks that routes are well formed and names are unique.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}

	patterns := make(map[string]bool, len(m.Routes))
	for i, r := range m.Routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return fmt.Errorf("route %d: pattern %q must start with /", i, r.Pattern)
		}
		if patterns[r.Pattern] {
			return fmt.Errorf("route %d: duplicate pattern %q", i, r.Pattern)
		}
		patterns[r.Pattern] = true
		if (r.Page == nil) == (r.Handler == nil) {
			return fmt.Errorf("route %q: exactly one of Page and Handler must be set", r.Pattern)
		}
	}

	names := make(map[string]bool, len(m.Islands))
	for _, isl := range m.Islands {
		if isl == nil {
			return fmt.Errorf("nil island in manifest")
		}
		if names[isl.Name()] {
			return fmt.Errorf("duplicate island %q", isl.Name())
		}
		names[isl.Name()] = true
	}
	return nil
}

// Island returns the registered island called name, or nil.
func (m *Manifest) Island(name string) *island.Island {
	for _, isl := range m.Islands {
		if isl.Name() == name {
			return isl
		}
	}
	return nil
}
