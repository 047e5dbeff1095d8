package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	controller "taskhub/controllers"
	"taskhub/middleware"
	"taskhub/notify"
	"taskhub/service"
)

const accessLogFormat = "[${time}] ${status} - ${latency} ${method} ${path}\n"

// Deps is everything the HTTP surface needs from main.
type Deps struct {
	Service     *service.Service
	Hub         *notify.Hub
	DB          controller.Pinger
	Metrics     *middleware.Metrics
	FrontendURL string

	// RateLimitAuth caps credential requests per IP per minute; zero
	// disables the limiter. A nil LimiterStorage counts in memory.
	RateLimitAuth  int
	LimiterStorage fiber.Storage

	// AccessLog toggles Fiber's request logger on the /api group.
	AccessLog bool
}

func component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

func SetupRoutes(app *fiber.App, deps Deps) {
	svc := deps.Service
	protected := middleware.Protected(svc)

	users := controller.NewUserController(svc, component("users"))
	teams := controller.NewTeamController(svc, component("teams"))
	projects := controller.NewProjectController(svc, component("projects"))
	tasks := controller.NewTaskController(svc, component("tasks"))
	comments := controller.NewCommentController(svc, component("comments"))
	notifications := controller.NewNotificationController(svc, deps.Hub, component("notifications"))
	email := controller.NewEmailController(svc, deps.FrontendURL, component("email"))
	status := controller.NewStatusController(deps.DB, component("status"))

	authLimit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.RateLimitAuth > 0 {
		authLimit = middleware.AuthRateLimiter(deps.RateLimitAuth, deps.LimiterStorage)
	}

	app.Get("/health", status.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api")
	if deps.AccessLog {
		api.Use(logger.New(logger.Config{Format: accessLogFormat}))
	}
	api.Get("/status", status.Status)

	// Users
	user := api.Group("/users")
	user.Post("/register", authLimit, users.Register)
	user.Post("/login", authLimit, users.Login)
	user.Get("/me", protected, users.Me)
	user.Put("/profile", protected, users.UpdateProfile)
	user.Put("/password", protected, users.ChangePassword)
	user.Delete("/me", protected, users.DeleteMe)
	user.Get("/", protected, users.ListUsers)
	user.Get("/:id", protected, users.GetUser)
	user.Put("/:id", protected, users.UpdateUser)

	// Tasks
	task := api.Group("/tasks", protected)
	task.Get("/", tasks.ListTasks)
	task.Post("/", tasks.CreateTask)
	task.Get("/:id", tasks.GetTask)
	task.Put("/:id", tasks.UpdateTask)
	task.Delete("/:id", tasks.DeleteTask)

	// Projects
	project := api.Group("/projects", protected)
	project.Get("/", projects.ListProjects)
	project.Post("/", projects.CreateProject)
	project.Get("/:id", projects.GetProject)
	project.Put("/:id", projects.UpdateProject)
	project.Delete("/:id", projects.DeleteProject)
	project.Post("/:id/members", projects.AddMember)
	project.Delete("/:id/members/:userId", projects.RemoveMember)
	project.Get("/:id/tasks", projects.ListTasks)

	// Teams
	team := api.Group("/teams", protected)
	team.Get("/", teams.ListTeams)
	team.Post("/", teams.CreateTeam)
	team.Get("/:id", teams.GetTeam)
	team.Put("/:id", teams.UpdateTeam)
	team.Delete("/:id", teams.DeleteTeam)
	team.Post("/:id/members/invite", teams.InviteMember)
	team.Delete("/:id/members/:userId", teams.RemoveMember)
	team.Delete("/:id/leave", teams.LeaveTeam)
	team.Delete("/:id/membership", teams.LeaveMembership)

	// Notifications; the websocket route sits before /:id so it is not
	// shadowed by the delete handler's pattern.
	notification := api.Group("/notifications", protected)
	notification.Get("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, websocket.New(notifications.Stream))
	notification.Get("/", notifications.ListNotifications)
	notification.Get("/unread-count", notifications.UnreadCount)
	notification.Put("/read-all", notifications.MarkAllRead)
	notification.Put("/:id/read", notifications.MarkRead)
	notification.Delete("/:id", notifications.DeleteNotification)

	// Comments
	api.Get("/comments/task/:taskId", protected, comments.ListForTask)

	// Email
	mail := api.Group("/email")
	mail.Post("/send", protected, email.SendEmail)
	mail.Post("/welcome", protected, email.SendWelcome)
	mail.Post("/password-reset", authLimit, email.RequestPasswordReset)
	mail.Post("/password-reset/confirm", authLimit, email.ConfirmPasswordReset)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "The requested resource was not found",
		})
	})

	logrus.WithField("component", "routes").Info("API routes initialized successfully")
}
