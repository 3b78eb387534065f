package models

import "time"

// Notification is a message addressed to the user who submitted a reviewed record.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"size:64;index:idx_notification_user_created" json:"user_id"`
	Type      string     `gorm:"size:64" json:"type"`
	Message   string     `gorm:"type:text" json:"message"`
	Read      bool       `gorm:"not null;default:false" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index:idx_notification_user_created" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
