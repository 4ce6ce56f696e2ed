package models

import (
	"time"
)

// Display is the gated resource: one per user, created only while the user
// holds an effectively active activation entitlement.
type Display struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Title     string    `gorm:"type:varchar(200)" json:"title" validate:"required,min=1,max=200"`
	Body      string    `gorm:"type:text" json:"body" validate:"max=20000"`
	ShareLink string    `gorm:"type:varchar(64);uniqueIndex" json:"share_link"`
	Public    bool      `gorm:"default:true" json:"public"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
