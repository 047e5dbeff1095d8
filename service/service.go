package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/models"
	"taskhub/store"
	"taskhub/utils"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uint) error
	CreatePasswordReset(ctx context.Context, r *models.PasswordReset) error
	PasswordResetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	RedeemPasswordReset(ctx context.Context, r *models.PasswordReset, passwordHash string, at time.Time) error
}

type TeamStore interface {
	CreateTeam(ctx context.Context, t *models.Team) error
	TeamByID(ctx context.Context, id uint) (*models.Team, error)
	TeamsForUser(ctx context.Context, userID uint) ([]models.Team, error)
	SaveTeam(ctx context.Context, t *models.Team) error
	DeleteTeam(ctx context.Context, id uint) error
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p *models.Project) error
	ProjectByID(ctx context.Context, id uint) (*models.Project, error)
	ProjectsForUser(ctx context.Context, userID uint) ([]models.Project, error)
	SaveProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id uint) error
}

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	TaskByID(ctx context.Context, id uint) (*models.Task, error)
	SaveTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id uint) error
	TasksForUser(ctx context.Context, userID uint, f store.TaskFilter) ([]models.Task, error)
	TasksByProject(ctx context.Context, projectID uint) ([]models.Task, error)
}

type CommentStore interface {
	CommentsByTask(ctx context.Context, taskID uint) ([]models.Comment, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	NotificationByID(ctx context.Context, id uint) (*models.Notification, error)
	NotificationsForUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error)
	DeleteNotification(ctx context.Context, id uint) error
}

// Repository is everything the service persists. *store.Store satisfies it.
type Repository interface {
	UserStore
	TeamStore
	ProjectStore
	TaskStore
	CommentStore
	NotificationStore
}

// Publisher pushes a stored notification to live listeners.
type Publisher interface {
	Publish(n models.Notification) int
}

// Mailer delivers one message and returns its Message-ID.
type Mailer interface {
	Send(ctx context.Context, mail utils.Mail) (string, error)
}

// Tokens issues and verifies access tokens.
type Tokens interface {
	Issue(userID uint) (string, error)
	Parse(token string) (uint, error)
}

type Service struct {
	repo      Repository
	tokens    Tokens
	hub       Publisher
	mailer    Mailer
	successor SuccessorPicker
	log       *logrus.Entry
	now       func() time.Time

	background sync.WaitGroup
}

type Option func(*Service)

func WithPublisher(p Publisher) Option { return func(s *Service) { s.hub = p } }

func WithMailer(m Mailer) Option { return func(s *Service) { s.mailer = m } }

func WithSuccessor(p SuccessorPicker) Option { return func(s *Service) { s.successor = p } }

func WithLogger(l *logrus.Entry) Option { return func(s *Service) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func New(repo Repository, tokens Tokens, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		tokens:    tokens,
		hub:       nopPublisher{},
		mailer:    nopMailer{},
		successor: RandomSuccessor{},
		log:       logrus.WithField("component", "service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until background deliveries started by the service finish.
func (s *Service) Wait() {
	s.background.Wait()
}

func (s *Service) goBackground(fn func(ctx context.Context)) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

// notifyQuietly records a side-effect notification. The operation that
// triggered it has already been committed, so failures are only logged.
func (s *Service) notifyQuietly(ctx context.Context, userID uint, typ models.NotificationType, msg string, related uint) {
	_, err := s.CreateNotification(ctx, NotificationInput{
		Message:       msg,
		UserID:        userID,
		Type:          typ,
		RelatedItemID: strconv.FormatUint(uint64(related), 10),
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    typ,
		}).Warn("failed to create notification")
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.Notification) int { return 0 }

type nopMailer struct{}

func (nopMailer) Send(context.Context, utils.Mail) (string, error) { return "", nil }
