// Package migrations embeds the schema for the folder and document tables.
package migrations

import "embed"

// FS holds the numbered up and down migrations, applied in name order.
//
//go:embed *.sql
var FS embed.FS
