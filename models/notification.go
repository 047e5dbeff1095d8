package models

import "time"

type NotificationType string

const (
	NotificationTask    NotificationType = "task"
	NotificationComment NotificationType = "comment"
	NotificationMention NotificationType = "mention"
	NotificationSystem  NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTask, NotificationComment, NotificationMention, NotificationSystem:
		return true
	}
	return false
}

// Notification is an in-app message addressed to a single user
type Notification struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	Message       string           `gorm:"not null" json:"message"`
	UserID        uint             `gorm:"not null;index:idx_notification_user_created,priority:1" json:"user_id"`
	IsRead        bool             `gorm:"not null;default:false" json:"is_read"`
	Type          NotificationType `gorm:"not null" json:"type"`
	RelatedItemID string           `json:"related_item_id,omitempty"`
	CreatedAt     time.Time        `gorm:"index:idx_notification_user_created,priority:2,sort:desc" json:"created_at"`
}
