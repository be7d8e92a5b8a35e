// Package migrations embeds the goose SQL migrations for the ties and
// categories tables and the change-notification triggers.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass it to goose.NewProvider; no filesystem path is needed at runtime.
//
//go:embed *.sql
var FS embed.FS
