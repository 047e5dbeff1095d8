package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/service"
	"taskhub/utils"
)

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindForbidden:
		return fiber.StatusForbidden
	case service.KindConflict:
		return fiber.StatusConflict
	case service.KindBadRequest, service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindUnauthenticated:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusServiceUnavailable
	}
}

// fail writes err as an error response. Unclassified failures are reported
// to Sentry with the route that hit them.
func fail(c *fiber.Ctx, log *logrus.Entry, err error) error {
	kind := service.KindOf(err)
	if kind == service.KindUnavailable {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
		utils.LogError("service_unavailable", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
	}
	return utils.ErrorResponse(c, statusFor(kind), service.MessageOf(err), nil)
}

func badBody(c *fiber.Ctx, err error) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
}

func badParam(c *fiber.Ctx, err error) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"message": msg})
}
