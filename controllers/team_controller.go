package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/service"
	"taskhub/utils"
)

type TeamController struct {
	Service *service.Service
	Logger  *logrus.Entry
}

func NewTeamController(svc *service.Service, logger *logrus.Entry) *TeamController {
	return &TeamController{
		Service: svc,
		Logger:  logger,
	}
}

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Members     []uint `json:"members"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type InviteRequest struct {
	Email string `json:"email"`
}

func teamViews(teams []models.Team) []models.TeamView {
	out := make([]models.TeamView, 0, len(teams))
	for i := range teams {
		out = append(out, teams[i].View())
	}
	return out
}

func (tc *TeamController) ListTeams(c *fiber.Ctx) error {
	teams, err := tc.Service.ListTeams(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(teamViews(teams))
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	team, err := tc.Service.CreateTeam(c.UserContext(), middleware.UserID(c), service.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		Members:     req.Members,
	})
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team.View())
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	team, err := tc.Service.GetTeam(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(team.View())
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	team, err := tc.Service.UpdateTeam(c.UserContext(), id, middleware.UserID(c), service.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(team.View())
}

func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	if err := tc.Service.DeleteTeam(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return fail(c, tc.Logger, err)
	}
	return message(c, "Team deleted successfully")
}

func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	team, err := tc.Service.InviteMember(c.UserContext(), id, req.Email, middleware.UserID(c))
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(team.View())
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	userID, err := utils.ParseID(c, "userId")
	if err != nil {
		return badParam(c, err)
	}
	team, err := tc.Service.RemoveMember(c.UserContext(), id, userID, middleware.UserID(c))
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	return c.JSON(team.View())
}

// LeaveTeam is the owner-aware leave: an owner hands the team over, and the
// last member out deletes it.
func (tc *TeamController) LeaveTeam(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	res, err := tc.Service.LeaveTeam(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, tc.Logger, err)
	}
	if res.Deleted {
		return c.JSON(fiber.Map{"message": "You left and the team was deleted (no members left)", "deleted": true})
	}
	return c.JSON(fiber.Map{"message": "Left the team successfully", "deleted": false, "team": res.Team.View()})
}

func (tc *TeamController) LeaveMembership(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	if _, err := tc.Service.LeaveTeamAsMember(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return fail(c, tc.Logger, err)
	}
	return message(c, "Successfully left the team")
}
