package service

import (
	"context"

	"taskhub/models"
)

// ListComments returns a task's comments oldest first. Any signed-in user may
// read them.
func (s *Service) ListComments(ctx context.Context, taskID uint) ([]models.Comment, error) {
	comments, err := s.repo.CommentsByTask(ctx, taskID)
	if err != nil {
		return nil, unavailable(err)
	}
	return comments, nil
}
