package island

import _ "embed"

// ClientScript is the browser runtime served at ClientScriptPath. It must be
// loaded as a module script after the state script.
//
//go:embed client/island.js
var ClientScript []byte
