package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/service"
	"taskhub/store"
	"taskhub/utils"
)

type TaskController struct {
	Service *service.Service
	Logger  *logrus.Entry
}

func NewTaskController(svc *service.Service, logger *logrus.Entry) *TaskController {
	return &TaskController{
		Service: svc,
		Logger:  logger,
	}
}

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	AssigneeID  *uint               `json:"assignee_id"`
	ProjectID   *uint               `json:"project_id"`
	Tags        []string            `json:"tags"`
}

type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"due_date"`
	AssigneeID  *uint                `json:"assignee_id"`
	ProjectID   *uint                `json:"project_id"`
	Tags        *[]string            `json:"tags"`
}

func taskViews(tasks []models.Task) []models.TaskView {
	out := make([]models.TaskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].View())
	}
	return out
}

// parseDay accepts RFC 3339 timestamps and plain dates.
func parseDay(v string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", v)
	}
	return &t, nil
}

func taskFilter(c *fiber.Ctx) (store.TaskFilter, error) {
	f := store.TaskFilter{
		Status:   models.TaskStatus(c.Query("status")),
		Priority: models.TaskPriority(c.Query("priority")),
		Tag:      c.Query("tag"),
	}
	if v := c.Query("project_id"); v != "" {
		id := c.QueryInt("project_id", 0)
		if id <= 0 {
			return f, fmt.Errorf("invalid project_id %q", v)
		}
		f.ProjectID = uint(id)
	}
	var err error
	if v := c.Query("due_from"); v != "" {
		if f.DueFrom, err = parseDay(v); err != nil {
			return f, err
		}
	}
	if v := c.Query("due_to"); v != "" {
		if f.DueTo, err = parseDay(v); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (tc *TaskController) ListTasks(c *fiber.Ctx) error {
	f, err := taskFilter(c)
	if err != nil {
		return badParam(c, err)
	}
	tasks, err := tc.Service.ListTasks(c.UserContext(), middleware.UserID(c), f)
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(taskViews(tasks))
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	task, err := tc.Service.CreateTask(c.UserContext(), middleware.UserID(c), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		Tags:        req.Tags,
	})
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task.View())
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	task, err := tc.Service.GetTask(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(task.View())
}

func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	task, err := tc.Service.UpdateTask(c.UserContext(), id, middleware.UserID(c), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
		Tags:        req.Tags,
	})
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(task.View())
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	if err := tc.Service.DeleteTask(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return fail(c, tc.Logger, err)
	}
	return message(c, "Task deleted successfully")
}
