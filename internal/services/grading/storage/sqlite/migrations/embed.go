package migrations

import "embed"

//go:embed grades/*.sql
var GradesFS embed.FS
