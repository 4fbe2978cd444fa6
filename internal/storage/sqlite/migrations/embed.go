package migrations

import "embed"

// FS contains embedded SQLite migrations for farkle storage.
//
//go:embed *.sql
var FS embed.FS
