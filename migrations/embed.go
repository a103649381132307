// Package migrations holds the Postgres schema.
package migrations

import "embed"

// FS holds the ordered *.up.sql files.
//
//go:embed *.up.sql
var FS embed.FS
