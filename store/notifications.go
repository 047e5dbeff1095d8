package store

import (
	"context"

	"taskhub/models"
)

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return wrap(s.conn(ctx).Create(n).Error)
}

func (s *Store) NotificationByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.conn(ctx).First(&n, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &n, nil
}

// NotificationsForUser returns the newest notifications first.
func (s *Store) NotificationsForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (s *Store) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, wrap(err)
}

func (s *Store) MarkNotificationRead(ctx context.Context, id uint) error {
	res := s.conn(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	return wrap(res.Error)
}

// MarkAllNotificationsRead flips every unread notification of userID and
// returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, wrap(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id uint) error {
	return affected(s.conn(ctx).Delete(&models.Notification{}, id))
}
