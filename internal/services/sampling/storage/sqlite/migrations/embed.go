package migrations

import "embed"

// FS contains embedded SQLite migrations for sampling storage.
//
//go:embed *.sql
var FS embed.FS
