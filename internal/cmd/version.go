package cmd

import (
	"strings"

	"github.com/Sumangal44/fresh/internal/version"
)

// versionTemplate is printed by --version. Braces in build metadata are
// escaped because cobra treats the string as a template.
func versionTemplate() string {
	text := ToolName + " " + version.Get().String() + "\n"
	text = strings.ReplaceAll(text, "{{", `{{"{{"}}`)
	return text
}
