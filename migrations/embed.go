// Package migrations embeds the goose SQL migrations for the compliance schema
// (drivers, time_records, journeys, compliance_audits). They are applied by
// cmd/api when MIGRATE_ON_START is set and by TestMain in integration tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem path at runtime.
//
//go:embed *.sql
var FS embed.FS
