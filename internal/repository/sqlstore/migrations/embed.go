// Package migrations embeds the SQL schema shared by the sqlite and postgres drivers.
package migrations

import "embed"

// FS holds NNN_name.up.sql files applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
