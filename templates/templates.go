// Package templates holds the HTML views and static assets, embedded into
// the binary.
package templates

import "embed"

//go:embed *.html static
var FS embed.FS
