package postgres

import _ "embed"

// Schema is the DDL of the tables the store reads.
//
//go:embed schema.sql
var Schema string
