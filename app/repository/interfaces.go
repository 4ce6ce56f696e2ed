package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateLastLogin(id uint, at time.Time) error
	Count() (int64, error)
}

// EntitlementRepository is the ledger surface for time-boxed grants. Records
// are append-only; there is no Update.
type EntitlementRepository interface {
	Create(entitlement *models.Entitlement) error
	// FindEffective returns the entitlement of the given kind that is
	// effectively active at the given instant, or gorm.ErrRecordNotFound.
	FindEffective(userID uint, kind string, now time.Time) (*models.Entitlement, error)
	ListByUser(userID uint) ([]models.Entitlement, error)
}

// DisplayRepository defines the interface for the gated display resource
type DisplayRepository interface {
	Create(display *models.Display) error
	GetByUserID(userID uint) (*models.Display, error)
	GetByShareLink(shareLink string) (*models.Display, error)
	Update(display *models.Display) error
}

// NotificationRepository is the durable backlog of undelivered messages
type NotificationRepository interface {
	Create(n *models.PendingNotification) error
	GetByID(id uint) (*models.PendingNotification, error)
	// FindSweepable returns up to limit records still worth retrying:
	// status pending, or failed with fewer than maxAttempts attempts.
	FindSweepable(limit int, maxAttempts int) ([]models.PendingNotification, error)
	Update(n *models.PendingNotification) error
	Delete(id uint) error
	List(offset, limit int) ([]models.PendingNotification, error)
	CountByStatus(status string) (int64, error)
}

// AuditRepository appends and reads the append-only audit trail
type AuditRepository interface {
	Append(entry *models.AuditLog) error
	ListByUser(userID uint, limit int) ([]models.AuditLog, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Entitlement  EntitlementRepository
	Display      DisplayRepository
	Notification NotificationRepository
	Audit        AuditRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Entitlement:  NewEntitlementRepository(db),
		Display:      NewDisplayRepository(db),
		Notification: NewNotificationRepository(db),
		Audit:        NewAuditRepository(db),
	}
}
