// Package content embeds the Blackwood manor definitions.
package content

import "embed"

// Dir is the directory of the manor inside FS.
const Dir = "blackwood"

// FS holds the manor's Lua files.
//
//go:embed blackwood/*.lua
var FS embed.FS
