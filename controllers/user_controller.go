package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/models"
	"taskhub/service"
	"taskhub/utils"
)

type UserController struct {
	Service *service.Service
	Logger  *logrus.Entry
}

func NewUserController(svc *service.Service, logger *logrus.Entry) *UserController {
	return &UserController{
		Service: svc,
		Logger:  logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type ProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

func (uc *UserController) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	res, err := uc.Service.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	utils.LogEvent("user_registered", map[string]interface{}{"user_id": res.User.ID})
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (uc *UserController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	res, err := uc.Service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	return c.JSON(res)
}

func (uc *UserController) Me(c *fiber.Ctx) error {
	user, err := uc.Service.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	return c.JSON(user.Profile())
}

func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	users, err := uc.Service.ListUsers(c.UserContext())
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	out := make([]models.UserProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return c.JSON(out)
}

func (uc *UserController) GetUser(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	user, err := uc.Service.GetUser(c.UserContext(), id)
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	return c.JSON(user.Profile())
}

func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := uc.Service.ChangePassword(c.UserContext(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, uc.Logger, err)
	}
	return message(c, "Password updated")
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := uc.Service.UpdateProfile(c.UserContext(), middleware.UserID(c), service.ProfileInput{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	return c.JSON(user.Profile())
}

func (uc *UserController) DeleteMe(c *fiber.Ctx) error {
	if err := uc.Service.DeleteAccount(c.UserContext(), middleware.UserID(c)); err != nil {
		return fail(c, uc.Logger, err)
	}
	c.ClearCookie("access_token")
	return message(c, "Account deleted successfully")
}

func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := uc.Service.UpdateUser(c.UserContext(), id, middleware.UserID(c), service.UpdateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		return fail(c, uc.Logger, err)
	}
	return c.JSON(user.Profile())
}
