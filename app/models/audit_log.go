package models

import (
	"time"
)

const (
	AuditActionIssue       = "entitlement.issue"
	AuditActionIssueManual = "entitlement.issue_manual"
)

// AuditLog records who did what to whom. Entries are append-only and never
// rewritten.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"type:varchar(100);not null" json:"actor"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"type:varchar(100);not null" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
