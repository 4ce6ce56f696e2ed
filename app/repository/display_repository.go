package repository

import (
	"gorm.io/gorm"

	"github.com/lumeboard/lumeboard/app/models"
)

// displayRepository implements the DisplayRepository interface
type displayRepository struct {
	db *gorm.DB
}

// NewDisplayRepository creates a new display repository instance
func NewDisplayRepository(db *gorm.DB) DisplayRepository {
	return &displayRepository{db: db}
}

// Create creates a new display
func (r *displayRepository) Create(display *models.Display) error {
	return r.db.Create(display).Error
}

// GetByUserID retrieves the display owned by a user
func (r *displayRepository) GetByUserID(userID uint) (*models.Display, error) {
	var display models.Display
	err := r.db.Where("user_id = ?", userID).First(&display).Error
	if err != nil {
		return nil, err
	}
	return &display, nil
}

// GetByShareLink retrieves a display by its public share link
func (r *displayRepository) GetByShareLink(shareLink string) (*models.Display, error) {
	var display models.Display
	err := r.db.Where("share_link = ?", shareLink).First(&display).Error
	if err != nil {
		return nil, err
	}
	return &display, nil
}

// Update saves changes to a display
func (r *displayRepository) Update(display *models.Display) error {
	return r.db.Save(display).Error
}
