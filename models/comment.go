package models

import "time"

// Comment is a note left on a task
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Mentions  []uint    `gorm:"type:text;serializer:json" json:"mentions"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-"`
}

type CommentView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	TaskID    uint      `json:"task_id"`
	User      UserRef   `json:"user_id"`
	Mentions  []uint    `json:"mentions"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) View() CommentView {
	mentions := c.Mentions
	if mentions == nil {
		mentions = []uint{}
	}
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		TaskID:    c.TaskID,
		User:      RefUser(c.UserID, c.User),
		Mentions:  mentions,
		CreatedAt: c.CreatedAt,
	}
}
