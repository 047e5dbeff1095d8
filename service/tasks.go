package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskhub/models"
	"taskhub/store"
)

type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uint
	ProjectID   *uint
	Tags        []string
}

// UpdateTaskInput is a partial update; nil fields keep their value.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uint
	ProjectID   *uint
	Tags        *[]string
}

func (s *Service) CreateTask(ctx context.Context, actor uint, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validation("task title is required")
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
		DueDate:     in.DueDate,
		Tags:        cleanTags(in.Tags),
		CreatedByID: actor,
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, validation(fmt.Sprintf("invalid status %q", in.Status))
		}
		task.Status = in.Status
	}
	if in.Priority != "" {
		if !in.Priority.Valid() {
			return nil, validation(fmt.Sprintf("invalid priority %q", in.Priority))
		}
		task.Priority = in.Priority
	}

	assignee := actor
	if in.AssigneeID != nil && *in.AssigneeID != 0 {
		assignee = *in.AssigneeID
	}
	if assignee != actor {
		if _, err := s.repo.UserByID(ctx, assignee); err != nil {
			return nil, lookup(err, "assignee")
		}
	}
	task.AssigneeID = &assignee

	if in.ProjectID != nil && *in.ProjectID != 0 {
		if err := s.checkProject(ctx, *in.ProjectID); err != nil {
			return nil, err
		}
		pid := *in.ProjectID
		task.ProjectID = &pid
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, unavailable(err)
	}
	if assignee != actor {
		s.notifyQuietly(ctx, assignee, models.NotificationTask,
			fmt.Sprintf("You have been assigned a new task: %q", task.Title), task.ID)
	}
	return s.reloadTask(ctx, task.ID)
}

func (s *Service) ListTasks(ctx context.Context, actor uint, f store.TaskFilter) ([]models.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, badRequest(fmt.Sprintf("invalid status %q", f.Status))
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, badRequest(fmt.Sprintf("invalid priority %q", f.Priority))
	}
	tasks, err := s.repo.TasksForUser(ctx, actor, f)
	if err != nil {
		return nil, unavailable(err)
	}
	return tasks, nil
}

// GetTask is visible to the creator and the current assignee.
func (s *Service) GetTask(ctx context.Context, id, actor uint) (*models.Task, error) {
	task, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if !task.IsCreator(actor) && !task.IsAssignee(actor) {
		return nil, forbidden("not authorized to view this task")
	}
	return task, nil
}

func (s *Service) UpdateTask(ctx context.Context, id, actor uint, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "task")
	}
	if !task.IsCreator(actor) && !task.IsAssignee(actor) {
		return nil, forbidden("not authorized to update this task")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validation("task title is required")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, validation(fmt.Sprintf("invalid status %q", *in.Status))
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, validation(fmt.Sprintf("invalid priority %q", *in.Priority))
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		due := *in.DueDate
		task.DueDate = &due
		task.ReminderSentAt = nil
	}
	if in.Tags != nil {
		task.Tags = cleanTags(*in.Tags)
	}
	if in.ProjectID != nil && *in.ProjectID != 0 {
		if err := s.checkProject(ctx, *in.ProjectID); err != nil {
			return nil, err
		}
		pid := *in.ProjectID
		task.ProjectID = &pid
	}

	reassigned := false
	if in.AssigneeID != nil && *in.AssigneeID != 0 && !task.IsAssignee(*in.AssigneeID) {
		if _, err := s.repo.UserByID(ctx, *in.AssigneeID); err != nil {
			return nil, lookup(err, "assignee")
		}
		assignee := *in.AssigneeID
		task.AssigneeID = &assignee
		reassigned = true
	}

	// Relations were loaded for the old ids; drop them so nothing stale is written.
	task.Assignee, task.CreatedBy, task.Project = nil, nil, nil
	if err := s.repo.SaveTask(ctx, task); err != nil {
		return nil, unavailable(err)
	}
	if reassigned && *task.AssigneeID != actor {
		s.notifyQuietly(ctx, *task.AssigneeID, models.NotificationTask,
			fmt.Sprintf("You have been assigned the task: %q", task.Title), task.ID)
	}
	return s.reloadTask(ctx, id)
}

// DeleteTask is reserved for the creator; the assignee cannot delete.
func (s *Service) DeleteTask(ctx context.Context, id, actor uint) error {
	task, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		return lookup(err, "task")
	}
	if !task.IsCreator(actor) {
		return forbidden("only the task creator can delete this task")
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return lookup(err, "task")
	}
	return nil
}

func (s *Service) checkProject(ctx context.Context, id uint) error {
	if _, err := s.repo.ProjectByID(ctx, id); err != nil {
		return lookup(err, "project")
	}
	return nil
}

func (s *Service) reloadTask(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.repo.TaskByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "task")
	}
	return task, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
