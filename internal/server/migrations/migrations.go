// Package migrations embeds the goose migrations for SQL-backed license
// registries.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
