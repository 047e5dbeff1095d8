package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/service"
	"taskhub/utils"
)

type EmailController struct {
	Service *service.Service
	Logger  *logrus.Entry
	// FrontendURL is where reset links point. When empty the request's own
	// origin is used.
	FrontendURL string
}

func NewEmailController(svc *service.Service, frontendURL string, logger *logrus.Entry) *EmailController {
	return &EmailController{
		Service:     svc,
		Logger:      logger,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type WelcomeEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func sent(c *fiber.Ctx, messageID string) error {
	return c.JSON(fiber.Map{"success": true, "messageId": messageID})
}

func (ec *EmailController) SendEmail(c *fiber.Ctx) error {
	var req SendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	id, err := ec.Service.SendEmail(c.UserContext(), utils.Mail{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
	})
	if err != nil {
		return fail(c, ec.Logger, err)
	}
	return sent(c, id)
}

func (ec *EmailController) SendWelcome(c *fiber.Ctx) error {
	var req WelcomeEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	id, err := ec.Service.SendWelcome(c.UserContext(), req.Email, req.Name)
	if err != nil {
		return fail(c, ec.Logger, err)
	}
	return sent(c, id)
}

func (ec *EmailController) RequestPasswordReset(c *fiber.Ctx) error {
	var req PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	base := ec.FrontendURL
	if base == "" {
		base = c.Protocol() + "://" + c.Hostname()
	}
	msg, err := ec.Service.RequestPasswordReset(c.UserContext(), req.Email, base)
	if err != nil {
		return fail(c, ec.Logger, err)
	}
	return message(c, msg)
}

func (ec *EmailController) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := ec.Service.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return fail(c, ec.Logger, err)
	}
	utils.LogEvent("password_reset", nil)
	return message(c, "Password has been reset")
}
