// services/weekly_report.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"recruit-reminder-backend/models"
	"recruit-reminder-backend/utils"
)

const WeeklyReportJob = "weekly-report"

type WeeklyReportConfig struct {
	// ActiveWindow is how recently a user must have been seen to get a digest.
	ActiveWindow time.Duration
	// RangeDays is the length of the look-ahead; the range is inclusive.
	RangeDays int
}

// WeeklyReportService sends each active user a digest of the coming week.
type WeeklyReportService struct {
	repo    Repository
	sender  NotificationSender
	cfg     WeeklyReportConfig
	now     func() time.Time
	metrics *Metrics
}

func NewWeeklyReportService(repo Repository, sender NotificationSender, cfg WeeklyReportConfig, now func() time.Time, metrics *Metrics) *WeeklyReportService {
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = 30 * 24 * time.Hour
	}
	if cfg.RangeDays <= 0 {
		cfg.RangeDays = 7
	}
	if now == nil {
		now = time.Now
	}
	return &WeeklyReportService{
		repo:    repo,
		sender:  sender,
		cfg:     cfg,
		now:     now,
		metrics: metrics,
	}
}

// SendWeeklyReports sends one digest per active user with at least one
// schedule between today and today+RangeDays.
func (s *WeeklyReportService) SendWeeklyReports(ctx context.Context) (report *RunReport, err error) {
	started := s.now()
	report = newRunReport(WeeklyReportJob, started)
	defer func() {
		report.FinishedAt = s.now()
		s.metrics.observeJob(WeeklyReportJob, started, err)
	}()

	log.Println("[weekly] Sending weekly reports...")
	today := utils.BeginningOfDay(started)
	weekEnd := today.AddDate(0, 0, s.cfg.RangeDays)

	users, err := s.repo.GetActiveUsers(ctx, started.Add(-s.cfg.ActiveWindow))
	if err != nil {
		log.Printf("[weekly] Failed to fetch active users: %v", err)
		return report, fmt.Errorf("weekly report: %w", err)
	}

	for _, user := range users {
		s.processUser(ctx, report, user, today, weekEnd)
	}

	log.Printf("[weekly] Weekly reports completed (%s)", report)
	return report, nil
}

func (s *WeeklyReportService) processUser(ctx context.Context, report *RunReport, user models.User, today, weekEnd time.Time) {
	key := user.ID.String()
	report.Considered++

	schedules, err := s.repo.GetUserSchedulesInRange(ctx, user.ID, today, weekEnd)
	if err != nil {
		log.Printf("[weekly] User %s: failed to fetch schedules: %v", user.ID, err)
		report.fail(key, err)
		s.metrics.report(outcomeFailed)
		return
	}
	if len(schedules) == 0 {
		report.Skipped++
		s.metrics.report(outcomeSkipped)
		return
	}

	if err := s.sender.SendSummary(ctx, user.MessagingID, schedules, today, weekEnd); err != nil {
		log.Printf("[weekly] User %s: failed to send report: %v", user.ID, err)
		report.fail(key, err)
		s.metrics.report(outcomeFailed)
		return
	}

	report.Sent++
	s.metrics.report(outcomeSent)
	if err := s.repo.LogWeeklyReport(ctx, user.ID, today, len(schedules)); err != nil {
		log.Printf("[weekly] User %s: failed to log report: %v", user.ID, err)
		report.addError(key, err)
	}
}
