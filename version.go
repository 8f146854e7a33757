package bitrig

import _ "embed"

// Version is the release of the bitrig library and tools.
//
//go:embed VERSION
var Version string
