package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/rxcart-backend/internal/reminders"
)

type fakeReminderSender struct {
	result reminders.SendResult
	err    error
	calls  int
}

func (f *fakeReminderSender) SendDue(context.Context) (reminders.SendResult, error) {
	f.calls++
	return f.result, f.err
}

func TestReminderJobRunsSendDue(t *testing.T) {
	sender := &fakeReminderSender{result: reminders.SendResult{Sent: 3, Deactivated: 1}}
	job, err := NewReminderJob(ReminderJobParams{Logger: quietLogger(), Reminders: sender})
	if err != nil {
		t.Fatalf("NewReminderJob: %v", err)
	}
	if job.Name() != "medicine-reminders" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected one SendDue call, got %d", sender.calls)
	}
}

func TestReminderJobSurfacesErrors(t *testing.T) {
	sender := &fakeReminderSender{err: errors.New("smtp down")}
	job, err := NewReminderJob(ReminderJobParams{Logger: quietLogger(), Reminders: sender})
	if err != nil {
		t.Fatalf("NewReminderJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
