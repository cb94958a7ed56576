// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and by the storage integration tests.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
