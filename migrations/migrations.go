// Package migrations embeds the SQL schema migrations so the binary can
// migrate itself without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
