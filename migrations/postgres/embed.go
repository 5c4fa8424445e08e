// Package migrations embebe los archivos SQL del esquema.
package migrations

import "embed"

// FS contiene las migraciones de PostgreSQL.
//
//go:embed *.sql
var FS embed.FS
