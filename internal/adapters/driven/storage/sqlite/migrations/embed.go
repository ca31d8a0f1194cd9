// Package migrations embeds the SQL migration files for the result cache.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
