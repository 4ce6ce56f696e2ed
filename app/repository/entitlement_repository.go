package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
)

// entitlementRepository implements the EntitlementRepository interface
type entitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository creates a new entitlement repository instance
func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepository{db: db}
}

// Create appends a new entitlement record
func (r *entitlementRepository) Create(entitlement *models.Entitlement) error {
	return r.db.Create(entitlement).Error
}

// FindEffective returns the grant of the given kind that still applies at
// the given instant. Expiry is evaluated in the query, never written back.
func (r *entitlementRepository) FindEffective(userID uint, kind string, now time.Time) (*models.Entitlement, error) {
	var entitlement models.Entitlement
	err := r.db.
		Where("user_id = ? AND kind = ? AND status = ? AND expires_at >= ?",
			userID, kind, models.EntitlementStatusActive, now).
		Order("expires_at DESC").
		First(&entitlement).Error
	if err != nil {
		return nil, err
	}
	return &entitlement, nil
}

// ListByUser returns all grants ever issued to a user, newest first
func (r *entitlementRepository) ListByUser(userID uint) ([]models.Entitlement, error) {
	var entitlements []models.Entitlement
	err := r.db.Where("user_id = ?", userID).Order("issued_at DESC").Find(&entitlements).Error
	return entitlements, err
}
