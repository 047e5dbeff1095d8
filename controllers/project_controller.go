package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/service"
	"taskhub/utils"
)

type ProjectController struct {
	Service *service.Service
	Logger  *logrus.Entry
}

func NewProjectController(svc *service.Service, logger *logrus.Entry) *ProjectController {
	return &ProjectController{
		Service: svc,
		Logger:  logger,
	}
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type AddMemberRequest struct {
	UserID uint `json:"user_id"`
}

func (pc *ProjectController) ListProjects(c *fiber.Ctx) error {
	projects, err := pc.Service.ListProjects(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	out := make([]models.ProjectView, 0, len(projects))
	for i := range projects {
		out = append(out, projects[i].View())
	}
	return c.JSON(out)
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	project, err := pc.Service.CreateProject(c.UserContext(), middleware.UserID(c), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project.View())
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	project, err := pc.Service.GetProject(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	return c.JSON(project.View())
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	project, err := pc.Service.UpdateProject(c.UserContext(), id, middleware.UserID(c), service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	return c.JSON(project.View())
}

func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	if err := pc.Service.DeleteProject(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return fail(c, pc.Logger, err)
	}
	return message(c, "Project deleted successfully")
}

func (pc *ProjectController) AddMember(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.UserID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "user_id is required", nil)
	}
	project, err := pc.Service.AddProjectMember(c.UserContext(), id, req.UserID, middleware.UserID(c))
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	return c.JSON(project.View())
}

func (pc *ProjectController) RemoveMember(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	userID, err := utils.ParseID(c, "userId")
	if err != nil {
		return badParam(c, err)
	}
	project, err := pc.Service.RemoveProjectMember(c.UserContext(), id, userID, middleware.UserID(c))
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	return c.JSON(project.View())
}

func (pc *ProjectController) ListTasks(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	tasks, err := pc.Service.ListProjectTasks(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, pc.Logger, err)
	}
	return c.JSON(taskViews(tasks))
}
