// Package static embeds the stylesheet served next to the pages.
package static

import "embed"

// FS exposes static assets for HTTP serving.
//
//go:embed *.css
var FS embed.FS
