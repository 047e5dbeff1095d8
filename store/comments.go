package store

import (
	"context"

	"taskhub/models"
)

// CreateComment inserts c as-is. The API only reads comments; this exists
// for seeding fixtures and imports.
func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return wrap(s.conn(ctx).Omit("User").Create(c).Error)
}

// CommentsByTask returns a task's comments oldest first.
func (s *Store) CommentsByTask(ctx context.Context, taskID uint) ([]models.Comment, error) {
	var out []models.Comment
	err := s.conn(ctx).Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at").Order("id").
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}
