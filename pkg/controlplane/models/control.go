// Package models defines the control plane's persisted record types.
package models

import "time"

// AuditRecord is the durable log entry for one admitted Control message.
// It is a read side only: the process never replays AuditRecords
// into a worker's bin map on startup, it exists purely for observability
// and debugging of the installation history.
type AuditRecord struct {
	Sequence         uint64 `gorm:"primaryKey"`
	ReceivedAt       time.Time
	InstKind         string
	MapDigest        string
	IdempotencyToken string `gorm:"uniqueIndex"`
}

// AllModels returns every GORM model the audit store persists. The schema
// itself comes from the SQL migrations, not from GORM's AutoMigrate.
func AllModels() []any {
	return []any{
		&AuditRecord{},
	}
}
