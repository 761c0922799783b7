// Package appfs embeds the assets shipped inside the binaries.
package appfs

import "embed"

//go:embed assets migrations templates
var FS embed.FS
