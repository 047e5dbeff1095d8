package service

import (
	"context"
	"strings"

	"taskhub/models"
)

// NotificationListLimit caps how many notifications a listing returns.
const NotificationListLimit = 50

type NotificationInput struct {
	Message       string
	UserID        uint
	Type          models.NotificationType
	RelatedItemID string
}

// CreateNotification stores a notification and pushes it to the recipient's
// live connections. It is not exposed over HTTP.
func (s *Service) CreateNotification(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	msg := strings.TrimSpace(in.Message)
	switch {
	case msg == "":
		return nil, validation("notification message is required")
	case in.UserID == 0:
		return nil, validation("notification recipient is required")
	case in.Type == "":
		return nil, validation("notification type is required")
	case !in.Type.Valid():
		return nil, validation("invalid notification type " + string(in.Type))
	}

	n := &models.Notification{
		Message:       msg,
		UserID:        in.UserID,
		Type:          in.Type,
		RelatedItemID: in.RelatedItemID,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, unavailable(err)
	}
	s.hub.Publish(*n)
	return n, nil
}

func (s *Service) ListNotifications(ctx context.Context, actor uint) ([]models.Notification, error) {
	list, err := s.repo.NotificationsForUser(ctx, actor, NotificationListLimit)
	if err != nil {
		return nil, unavailable(err)
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, actor uint) (int64, error) {
	n, err := s.repo.CountUnread(ctx, actor)
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id, actor uint) (*models.Notification, error) {
	n, err := s.ownNotification(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
			return nil, unavailable(err)
		}
		n.IsRead = true
	}
	return n, nil
}

// MarkAllNotificationsRead returns how many notifications changed state.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor uint) (int64, error) {
	n, err := s.repo.MarkAllNotificationsRead(ctx, actor)
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func (s *Service) DeleteNotification(ctx context.Context, id, actor uint) error {
	if _, err := s.ownNotification(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.DeleteNotification(ctx, id); err != nil {
		return lookup(err, "notification")
	}
	return nil
}

func (s *Service) ownNotification(ctx context.Context, id, actor uint) (*models.Notification, error) {
	n, err := s.repo.NotificationByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "notification")
	}
	if n.UserID != actor {
		return nil, forbidden("not authorized to access this notification")
	}
	return n, nil
}
