package migrations

import "embed"

// FS contains the embedded SQLite schema of the cave store.
//
//go:embed *.sql
var FS embed.FS
