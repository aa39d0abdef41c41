// Package migrations embeds the backend's goose migrations (PostgreSQL).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
