// Package migrations embeds the audit store's SQL schema migrations.
package migrations

import "embed"

// FS holds the audit store's versioned SQL migrations, applied via
// golang-migrate's iofs source driver.
//
//go:embed *.sql
var FS embed.FS
