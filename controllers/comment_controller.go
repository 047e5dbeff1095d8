package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskhub/models"
	"taskhub/service"
	"taskhub/utils"
)

type CommentController struct {
	Service *service.Service
	Logger  *logrus.Entry
}

func NewCommentController(svc *service.Service, logger *logrus.Entry) *CommentController {
	return &CommentController{
		Service: svc,
		Logger:  logger,
	}
}

func (cc *CommentController) ListForTask(c *fiber.Ctx) error {
	taskID, err := utils.ParseID(c, "taskId")
	if err != nil {
		return badParam(c, err)
	}
	comments, err := cc.Service.ListComments(c.UserContext(), taskID)
	if err != nil {
		return fail(c, cc.Logger, err)
	}
	out := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].View())
	}
	return c.JSON(out)
}
