package postgres

import "embed"

// MigrationsFS embeds the SQL migrations so the server binary can apply
// them without a migrations directory on disk.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
