package models

import (
	"time"
)

const (
	NotificationStatusPending = "pending"
	NotificationStatusFailed  = "failed"
)

// PendingNotification is a transactional message awaiting delivery. A record
// exists only while delivery is outstanding: successful delivery removes it,
// exhausting the retry budget leaves it behind in status failed for
// inspection and manual resend.
type PendingNotification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Recipient     string     `gorm:"type:varchar(200);not null" json:"recipient"`
	Subject       string     `gorm:"type:varchar(300);not null" json:"subject"`
	Body          string     `gorm:"type:text" json:"body"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_pending_notifications_status_attempts,priority:1" json:"status"`
	Attempts      int        `gorm:"not null;default:0;index:idx_pending_notifications_status_attempts,priority:2" json:"attempts"`
	LastAttemptAt *time.Time `gorm:"type:timestamp;default:null" json:"last_attempt_at"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
