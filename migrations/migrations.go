// Package migrations embeds the SQL schema managed by goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
