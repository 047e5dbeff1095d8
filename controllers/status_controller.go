package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusController struct {
	DB     Pinger
	Logger *logrus.Entry
}

func NewStatusController(db Pinger, logger *logrus.Entry) *StatusController {
	return &StatusController{DB: db, Logger: logger}
}

func (sc *StatusController) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "API is running"})
}

// Health reports 503 while the database is unreachable.
func (sc *StatusController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := sc.DB.Ping(ctx); err != nil {
		sc.Logger.WithError(err).Warn("health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unavailable",
			"database": "down",
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "up"})
}
