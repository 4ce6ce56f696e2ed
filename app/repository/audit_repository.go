package repository

import (
	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
)

// auditRepository implements the AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository instance
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append writes one audit entry. Entries are never updated or deleted.
func (r *auditRepository) Append(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// ListByUser returns the audit trail for a subject user, newest first
func (r *auditRepository) ListByUser(userID uint, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
