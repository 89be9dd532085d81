// Package schema embeds the database migrations so that the server and the
// integration tests apply the same schema.
package schema

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
