package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/mentora-api/internal/models"
)

const maxNotificationPage = 100

// NotificationRepository stores messages for submitters whose records were reviewed.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListByUser returns the newest notifications first; limit falls back to 50 when unset or above 100.
func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > maxNotificationPage {
		limit = 50
	}

	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(newestFirst, window(limit, offset)).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flags the notification as read once; repeated calls keep the first read_at.
// A notification owned by another user is reported as gorm.ErrRecordNotFound.
func (r *notificationRepository) MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Model(&models.Notification{}).
			Where("id = ? AND user_id = ? AND read = ?", id, userID, false).
			Updates(map[string]interface{}{"read": true, "read_at": now}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	})
	if err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}
