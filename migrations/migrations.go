// Package migrations embeds the schema migration files so the binary can
// bootstrap its own database.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed *.sql
var files embed.FS

// Files returns the embedded migration files as a flat FS.
func Files() fs.FS { return files }
