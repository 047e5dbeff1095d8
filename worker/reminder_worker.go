package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"taskhub/models"
	"taskhub/service"
)

// ReminderWindow is how far ahead of a due date the reminder goes out.
const ReminderWindow = 24 * time.Hour

type ReminderStore interface {
	TasksDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]models.Task, error)
	MarkReminderSent(ctx context.Context, id uint, at time.Time) error
}

type Notifier interface {
	CreateNotification(ctx context.Context, in service.NotificationInput) (*models.Notification, error)
}

// ReminderWorker notifies assignees about tasks that are about to fall due.
type ReminderWorker struct {
	Store      ReminderStore
	Notifier   Notifier
	Logger     *logrus.Entry
	Interval   time.Duration
	StartDelay time.Duration
	Now        func() time.Time
}

func NewReminderWorker(store ReminderStore, notifier Notifier, interval time.Duration, logger *logrus.Entry) *ReminderWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ReminderWorker{
		Store:      store,
		Notifier:   notifier,
		Logger:     logger,
		Interval:   interval,
		StartDelay: 10 * time.Second,
		Now:        time.Now,
	}
}

func (rw *ReminderWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	select {
	case <-ctx.Done():
		return
	case <-time.After(rw.StartDelay):
	}

	rw.Logger.WithField("interval", rw.Interval.String()).Info("Reminder worker started")

	ticker := time.NewTicker(rw.Interval)
	defer ticker.Stop()

	for {
		rw.RunOnce(ctx)

		select {
		case <-ctx.Done():
			rw.Logger.Info("Reminder worker shutting down...")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce sends every pending reminder and returns how many went out.
func (rw *ReminderWorker) RunOnce(ctx context.Context) int {
	now := rw.Now()
	tasks, err := rw.Store.TasksDueForReminder(ctx, now, ReminderWindow)
	if err != nil {
		rw.Logger.WithError(err).Error("Error fetching tasks due for reminder")
		return 0
	}

	sent := 0
	for i := range tasks {
		if err := rw.remind(ctx, &tasks[i], now); err != nil {
			rw.Logger.WithError(err).WithField("task_id", tasks[i].ID).Warn("Error sending reminder")
			continue
		}
		sent++
	}
	if sent > 0 {
		rw.Logger.WithField("count", sent).Info("Sent due-date reminders")
	}
	return sent
}

func (rw *ReminderWorker) remind(ctx context.Context, task *models.Task, now time.Time) error {
	due := task.DueDate.Sub(now).Round(time.Minute)
	_, err := rw.Notifier.CreateNotification(ctx, service.NotificationInput{
		Message:       fmt.Sprintf("Task %q is due in %s", task.Title, formatDuration(due)),
		UserID:        task.ReminderRecipient(),
		Type:          models.NotificationTask,
		RelatedItemID: strconv.FormatUint(uint64(task.ID), 10),
	})
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	if err := rw.Store.MarkReminderSent(ctx, task.ID, now); err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	return nil
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.0f hours", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0f minutes", d.Minutes())
	}
	return "less than a minute"
}
