package models

import "time"

// AuditFields holds the timestamps shared by every table row.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
