package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work created by one user and assigned to another (or the same) user
type Task struct {
	gorm.Model
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `gorm:"not null;default:'todo';index" json:"status"`
	Priority    TaskPriority `gorm:"not null;default:'medium'" json:"priority"`
	DueDate     *time.Time   `gorm:"index" json:"due_date"`
	AssigneeID  *uint        `gorm:"index" json:"assignee_id"`
	ProjectID   *uint        `gorm:"index" json:"project_id"`
	Tags        []string     `gorm:"type:text;serializer:json" json:"tags"`
	CreatedByID uint         `gorm:"not null;index" json:"created_by"`

	// Reminder bookkeeping for the due-date worker
	ReminderSentAt *time.Time `json:"-"`

	// Relations
	Assignee  *User    `gorm:"foreignKey:AssigneeID" json:"-"`
	CreatedBy *User    `gorm:"foreignKey:CreatedByID" json:"-"`
	Project   *Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// IsCreator reports whether userID created the task.
func (t *Task) IsCreator(userID uint) bool {
	return t.CreatedByID == userID
}

// IsAssignee reports whether userID is the current assignee.
func (t *Task) IsAssignee(userID uint) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// ReminderRecipient is the assignee, or the creator for unassigned tasks.
func (t *Task) ReminderRecipient() uint {
	if t.AssigneeID != nil {
		return *t.AssigneeID
	}
	return t.CreatedByID
}

// ProjectSummary is the embedded project shape on task responses
type ProjectSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TaskView struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      TaskStatus      `json:"status"`
	Priority    TaskPriority    `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
	Assignee    *UserRef        `json:"assignee_id"`
	ProjectID   *uint           `json:"project_id"`
	Project     *ProjectSummary `json:"project,omitempty"`
	Tags        []string        `json:"tags"`
	CreatedBy   UserRef         `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *Task) View() TaskView {
	v := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		ProjectID:   t.ProjectID,
		Tags:        t.Tags,
		CreatedBy:   RefUser(t.CreatedByID, t.CreatedBy),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if t.AssigneeID != nil {
		ref := RefUser(*t.AssigneeID, t.Assignee)
		v.Assignee = &ref
	}
	if t.Project != nil && t.Project.ID != 0 {
		v.Project = &ProjectSummary{ID: t.Project.ID, Name: t.Project.Name, Color: t.Project.Color}
	}
	return v
}
