package repository

import (
	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
)

// notificationRepository implements the NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create persists a backlog record
func (r *notificationRepository) Create(n *models.PendingNotification) error {
	return r.db.Create(n).Error
}

// GetByID retrieves a backlog record by ID
func (r *notificationRepository) GetByID(id uint) (*models.PendingNotification, error) {
	var n models.PendingNotification
	err := r.db.First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// FindSweepable returns up to limit records the sweeper may still retry:
// pending records, and failed records below the attempt ceiling. Records
// already at the ceiling are terminal and excluded.
func (r *notificationRepository) FindSweepable(limit int, maxAttempts int) ([]models.PendingNotification, error) {
	var records []models.PendingNotification
	err := r.db.
		Where("status = ? OR (status = ? AND attempts < ?)",
			models.NotificationStatusPending, models.NotificationStatusFailed, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Update saves attempt bookkeeping on a backlog record
func (r *notificationRepository) Update(n *models.PendingNotification) error {
	return r.db.Save(n).Error
}

// Delete removes a backlog record after successful delivery
func (r *notificationRepository) Delete(id uint) error {
	return r.db.Delete(&models.PendingNotification{}, id).Error
}

// List returns backlog records for inspection, newest first
func (r *notificationRepository) List(offset, limit int) ([]models.PendingNotification, error) {
	var records []models.PendingNotification
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, err
}

// CountByStatus returns the number of backlog records in a status
func (r *notificationRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PendingNotification{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
