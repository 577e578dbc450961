package templates

import (
	"fmt"
	"strings"

	"golang.org/x/mod/module"
)

// ValidateModulePath checks that path is usable as a Go module path. Paths
// without a dot in the first element are allowed, as with go mod init.
func ValidateModulePath(path string) error {
	if path == "" {
		return fmt.Errorf("module path cannot be empty")
	}
	if err := module.CheckImportPath(path); err != nil {
		return fmt.Errorf("invalid module path %q: %w", path, err)
	}
	return nil
}

// SanitizeName converts a directory name into a module path element:
// lowercase, with runs of unsupported characters collapsed to a hyphen.
func SanitizeName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	result := strings.Trim(b.String(), "-.")
	if result == "" {
		return "app"
	}
	return result
}

// DeriveModulePath derives a module path from a directory name.
// Format: example.com/<sanitized dirname>.
func DeriveModulePath(dirname string) string {
	return "example.com/" + SanitizeName(dirname)
}
