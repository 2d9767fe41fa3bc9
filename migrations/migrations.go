// Package migrations embeds the ordered SQL schema files applied by `payables migrate`.
// Files are named NNN_description.sql; NNN is the version recorded in schema_migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
