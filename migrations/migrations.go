// Package migrations embeds the SQL schema migrations so the server binary
// can apply them without access to the source tree.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
