package migrations

import "embed"

// FS contains the embedded SQLite migrations for entity storage.
//
//go:embed *.sql
var FS embed.FS
