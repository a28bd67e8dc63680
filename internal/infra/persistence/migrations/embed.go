// Package migrations embeds the SQL schema migrations applied by goose.
package migrations

import "embed"

// FS holds every migration file of the service.
//
//go:embed *.sql
var FS embed.FS
