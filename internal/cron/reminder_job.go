package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/rxcart-backend/internal/reminders"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

type reminderSender interface {
	SendDue(ctx context.Context) (reminders.SendResult, error)
}

type ReminderJobParams struct {
	Logger    *logger.Logger
	Reminders reminderSender
}

// NewReminderJob sends every medicine reminder whose next dose is due.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminders == nil {
		return nil, fmt.Errorf("reminders service required")
	}
	return &reminderJob{logg: params.Logger, reminders: params.Reminders}, nil
}

type reminderJob struct {
	logg      *logger.Logger
	reminders reminderSender
}

func (j *reminderJob) Name() string { return "medicine-reminders" }

func (j *reminderJob) Run(ctx context.Context) error {
	result, err := j.reminders.SendDue(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sent":        result.Sent,
		"failed":      result.Failed,
		"deactivated": result.Deactivated,
	})
	if err != nil {
		return fmt.Errorf("medicine reminders: %w", err)
	}
	j.logg.Info(logCtx, "cron.reminders_sent")
	return nil
}
