// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"recruit-reminder-backend/models"
	"recruit-reminder-backend/utils"
)

const DailyRemindersJob = "daily-reminders"

// DefaultReminderOffsets are the D-n days a reminder goes out, in run order.
var DefaultReminderOffsets = []int{10, 5, 3, 1}

type ReminderConfig struct {
	Offsets []int
	// RetryFailed lets a failed attempt be sent again by a later run on the
	// same day. When false any logged attempt counts as sent.
	RetryFailed bool
}

// ReminderService sends D-n reminders for upcoming schedules.
type ReminderService struct {
	repo    Repository
	sender  NotificationSender
	cfg     ReminderConfig
	now     func() time.Time
	metrics *Metrics
}

func NewReminderService(repo Repository, sender NotificationSender, cfg ReminderConfig, now func() time.Time, metrics *Metrics) *ReminderService {
	if len(cfg.Offsets) == 0 {
		cfg.Offsets = DefaultReminderOffsets
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		repo:    repo,
		sender:  sender,
		cfg:     cfg,
		now:     now,
		metrics: metrics,
	}
}

// SendDailyReminders runs one pass over every offset. A failed storage query
// for an offset stops the run; failures for a single schedule are recorded
// and the pass moves on.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (report *RunReport, err error) {
	started := s.now()
	report = newRunReport(DailyRemindersJob, started)
	defer func() {
		report.FinishedAt = s.now()
		s.metrics.observeJob(DailyRemindersJob, started, err)
	}()

	log.Println("[reminder] Starting daily reminder processing...")
	today := utils.BeginningOfDay(started)

	for _, offset := range s.cfg.Offsets {
		target := today.AddDate(0, 0, offset)
		schedules, err := s.repo.GetSchedulesDueOn(ctx, target)
		if err != nil {
			log.Printf("[reminder] D-%d: failed to fetch schedules: %v", offset, err)
			return report, fmt.Errorf("daily reminders D-%d: %w", offset, err)
		}
		for _, schedule := range schedules {
			s.processSchedule(ctx, report, schedule, offset)
		}
	}

	log.Printf("[reminder] Daily reminder processing completed (%s)", report)
	return report, nil
}

func (s *ReminderService) processSchedule(ctx context.Context, report *RunReport, schedule models.Schedule, offset int) {
	kind := models.ReminderKind(offset)
	key := fmt.Sprintf("%s/%s", schedule.ID, kind)
	report.Considered++

	status, err := s.repo.NotificationStatus(ctx, schedule.ID, kind)
	if err != nil {
		log.Printf("[reminder] %s: dedup check failed: %v", key, err)
		s.recordFailure(ctx, report, schedule, kind, key, err)
		return
	}
	if status == Delivered || (status == AttemptFailed && !s.cfg.RetryFailed) {
		report.Skipped++
		s.metrics.reminder(kind, outcomeSkipped)
		return
	}

	if err := s.sender.SendReminder(ctx, schedule.Recipient(), schedule, offset); err != nil {
		log.Printf("[reminder] Failed to send %s for %s (%s): %v", kind, schedule.CompanyName, schedule.ID, err)
		s.recordFailure(ctx, report, schedule, kind, key, err)
		return
	}

	report.Sent++
	s.metrics.reminder(kind, outcomeSent)
	if err := s.repo.LogNotification(ctx, schedule.ID, kind, true, nil); err != nil {
		log.Printf("[reminder] Failed to log reminder %s: %v", key, err)
		report.addError(key, err)
	}
}

func (s *ReminderService) recordFailure(ctx context.Context, report *RunReport, schedule models.Schedule, kind, key string, cause error) {
	report.fail(key, cause)
	s.metrics.reminder(kind, outcomeFailed)
	msg := cause.Error()
	if err := s.repo.LogNotification(ctx, schedule.ID, kind, false, &msg); err != nil {
		log.Printf("[reminder] Failed to log failed reminder %s: %v", key, err)
		report.addError(key, err)
	}
}
