// services/notifier.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"recruit-reminder-backend/models"
)

var (
	ErrNoRecipient      = errors.New("recipient is empty")
	ErrInvalidRecipient = errors.New("recipient is not a valid phone number")
)

// NotificationSender delivers reminder and summary messages to a user.
type NotificationSender interface {
	SendReminder(ctx context.Context, recipient string, schedule models.Schedule, offsetDays int) error
	SendSummary(ctx context.Context, recipient string, schedules []models.Schedule, rangeStart, rangeEnd time.Time) error
}

// FormatReminder renders the D-n reminder for schedule.
func FormatReminder(schedule models.Schedule, offsetDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s リマインド\n", schedule.Type.Glyph(), models.ReminderKind(offsetDays))
	fmt.Fprintf(&b, "企業: %s\n", schedule.CompanyName)
	fmt.Fprintf(&b, "内容: %s\n", schedule.Type.DisplayName())
	fmt.Fprintf(&b, "日時: %s", schedule.DateString())
	if schedule.ScheduleTime != nil && *schedule.ScheduleTime != "" {
		fmt.Fprintf(&b, " %s", *schedule.ScheduleTime)
	}
	b.WriteString("\n")
	if schedule.Location != nil && *schedule.Location != "" {
		fmt.Fprintf(&b, "場所: %s\n", *schedule.Location)
	}
	fmt.Fprintf(&b, "あと%d日です。準備を忘れずに!", offsetDays)
	return b.String()
}

// FormatWeeklySummary renders the weekly digest for schedules in [start, end].
func FormatWeeklySummary(schedules []models.Schedule, start, end time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 今週の予定 (%s ~ %s)\n", start.Format(models.DateLayout), end.Format(models.DateLayout))
	fmt.Fprintf(&b, "Total: %d件\n\n", len(schedules))
	for _, s := range schedules {
		fmt.Fprintf(&b, "- %s %s (%s)\n", s.DateString(), s.CompanyName, s.Type.DisplayName())
	}
	return b.String()
}

// LogSender writes messages to the process log instead of delivering them.
// It backs NOTIFIER=log for local runs.
type LogSender struct {
	logger *log.Logger
}

func NewLogSender(logger *log.Logger) *LogSender {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendReminder(_ context.Context, recipient string, schedule models.Schedule, offsetDays int) error {
	if recipient == "" {
		return ErrNoRecipient
	}
	s.logger.Printf("[notify] to=%s\n%s", recipient, FormatReminder(schedule, offsetDays))
	return nil
}

func (s *LogSender) SendSummary(_ context.Context, recipient string, schedules []models.Schedule, rangeStart, rangeEnd time.Time) error {
	if recipient == "" {
		return ErrNoRecipient
	}
	s.logger.Printf("[notify] to=%s\n%s", recipient, FormatWeeklySummary(schedules, rangeStart, rangeEnd))
	return nil
}
