// Package sql embeds the repricing batch store's SQL migrations.
package sql

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
