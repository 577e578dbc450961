package templates

import "embed"

// payloadFS holds the file bodies referenced by FromTemplate and FromStatic.
//
//go:embed payload
var payloadFS embed.FS
