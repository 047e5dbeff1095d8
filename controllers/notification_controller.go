package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"taskhub/middleware"
	"taskhub/notify"
	"taskhub/service"
	"taskhub/utils"
)

type NotificationController struct {
	Service *service.Service
	Hub     *notify.Hub
	Logger  *logrus.Entry
}

func NewNotificationController(svc *service.Service, hub *notify.Hub, logger *logrus.Entry) *NotificationController {
	return &NotificationController{
		Service: svc,
		Hub:     hub,
		Logger:  logger,
	}
}

func (nc *NotificationController) ListNotifications(c *fiber.Ctx) error {
	list, err := nc.Service.ListNotifications(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, nc.Logger, err)
	}
	return c.JSON(list)
}

func (nc *NotificationController) UnreadCount(c *fiber.Ctx) error {
	n, err := nc.Service.UnreadCount(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, nc.Logger, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	n, err := nc.Service.MarkNotificationRead(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return fail(c, nc.Logger, err)
	}
	return c.JSON(n)
}

func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	n, err := nc.Service.MarkAllNotificationsRead(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, nc.Logger, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "count": n})
}

func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return badParam(c, err)
	}
	if err := nc.Service.DeleteNotification(c.UserContext(), id, middleware.UserID(c)); err != nil {
		return fail(c, nc.Logger, err)
	}
	return message(c, "Notification deleted successfully")
}

// Stream pushes the signed-in user's new notifications over a websocket
// until either side hangs up.
func (nc *NotificationController) Stream(conn *websocket.Conn) {
	defer conn.Close()

	userID, _ := conn.Locals("userID").(uint)
	if userID == 0 {
		return
	}
	sub := nc.Hub.Subscribe(userID)
	defer sub.Close()

	log := nc.Logger.WithField("user_id", userID)
	log.Debug("notification stream opened")

	// Inbound frames are ignored; a read error means the client went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for n := range sub.C {
		if err := conn.WriteJSON(n); err != nil {
			log.WithError(err).Debug("notification stream write failed")
			return
		}
	}
	log.Debug("notification stream closed")
}
