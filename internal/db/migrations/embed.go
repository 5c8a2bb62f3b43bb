package migrations

import "embed"

// FS embeds the SQL migration files. Both the in-process migrator and cmd/migrate read from it.
//
//go:embed sql/*.sql
var FS embed.FS

// sourceDir is the directory inside FS holding the migrations
const sourceDir = "sql"
