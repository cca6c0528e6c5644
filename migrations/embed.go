// Package migrations embeds the PostgreSQL schema migrations.
//
// Files are applied in lexical order. A file named NNN_name_rollback.sql undoes NNN_name.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
