package store

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/models"
)

// TaskFilter narrows a task listing. Zero fields are ignored.
type TaskFilter struct {
	Status    models.TaskStatus
	Priority  models.TaskPriority
	ProjectID uint
	Tag       string
	DueFrom   *time.Time
	DueTo     *time.Time
}

func preloadTask(db *gorm.DB) *gorm.DB {
	return db.Preload("Assignee").Preload("CreatedBy").Preload("Project")
}

func (f TaskFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		db = db.Where("priority = ?", f.Priority)
	}
	if f.ProjectID != 0 {
		db = db.Where("project_id = ?", f.ProjectID)
	}
	if f.Tag != "" {
		db = whereHasTag(db, f.Tag)
	}
	if f.DueFrom != nil {
		db = db.Where("due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		db = db.Where("due_date <= ?", *f.DueTo)
	}
	return db
}

// whereHasTag matches tasks whose decoded tags array contains tag exactly.
// The stored JSON escapes characters like '&', so a text match on the raw
// column is unreliable.
func whereHasTag(db *gorm.DB, tag string) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		elem, _ := json.Marshal([]string{tag})
		return db.Where("CAST(tasks.tags AS jsonb) @> CAST(? AS jsonb)", string(elem))
	}
	return db.Where("EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value = ?)", tag)
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Create(t).Error)
}

func (s *Store) TaskByID(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := preloadTask(s.conn(ctx)).First(&t, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &t, nil
}

// SaveTask writes every column; GORM refreshes updated_at.
func (s *Store) SaveTask(ctx context.Context, t *models.Task) error {
	return wrap(s.conn(ctx).Omit(clause.Associations).Save(t).Error)
}

func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	return affected(s.conn(ctx).Delete(&models.Task{}, id))
}

// TasksForUser returns tasks userID created or is assigned to.
func (s *Store) TasksForUser(ctx context.Context, userID uint, f TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	q := preloadTask(s.conn(ctx)).Where("(created_by_id = ? OR assignee_id = ?)", userID, userID)
	if err := f.apply(q).Order("id").Find(&tasks).Error; err != nil {
		return nil, wrap(err)
	}
	return tasks, nil
}

func (s *Store) TasksByProject(ctx context.Context, projectID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := preloadTask(s.conn(ctx)).Where("project_id = ?", projectID).Order("id").Find(&tasks).Error; err != nil {
		return nil, wrap(err)
	}
	return tasks, nil
}

// TasksDueForReminder returns open tasks due in [now, now+window] that have
// not been reminded yet.
func (s *Store) TasksDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]models.Task, error) {
	var tasks []models.Task
	err := s.conn(ctx).
		Where("due_date >= ? AND due_date <= ?", now, now.Add(window)).
		Where("status <> ?", models.StatusCompleted).
		Where("reminder_sent_at IS NULL").
		Order("due_date").
		Find(&tasks).Error
	if err != nil {
		return nil, wrap(err)
	}
	return tasks, nil
}

func (s *Store) MarkReminderSent(ctx context.Context, id uint, at time.Time) error {
	return affected(s.conn(ctx).Model(&models.Task{}).Where("id = ?", id).Update("reminder_sent_at", at))
}
