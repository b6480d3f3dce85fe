// Package migrations embeds the reservation service schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
