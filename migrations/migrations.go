// Package migrations embeds the SQL schema migrations
package migrations

import "embed"

// FS holds the versioned migration files
//
//go:embed *.sql
var FS embed.FS

// CHFS holds the clickhouse event-sink DDL
//
//go:embed clickhouse/*.sql
var CHFS embed.FS
