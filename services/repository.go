// services/repository.go
package services

import (
	"context"
	"time"

	"recruit-reminder-backend/models"

	"github.com/google/uuid"
)

// NotificationStatus summarises the log rows for one (schedule, kind) pair.
type NotificationStatus int

const (
	NotAttempted NotificationStatus = iota
	AttemptFailed
	Delivered
)

func (s NotificationStatus) String() string {
	switch s {
	case AttemptFailed:
		return "failed"
	case Delivered:
		return "delivered"
	default:
		return "not_attempted"
	}
}

// Repository is the storage contract the reminder and weekly report jobs
// depend on. Schedules returned by GetSchedulesDueOn carry their owner in
// Schedule.User.
type Repository interface {
	GetSchedulesDueOn(ctx context.Context, date time.Time) ([]models.Schedule, error)
	NotificationStatus(ctx context.Context, scheduleID uuid.UUID, kind string) (NotificationStatus, error)
	LogNotification(ctx context.Context, scheduleID uuid.UUID, kind string, success bool, errMsg *string) error
	GetActiveUsers(ctx context.Context, since time.Time) ([]models.User, error)
	GetUserSchedulesInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Schedule, error)
	LogWeeklyReport(ctx context.Context, userID uuid.UUID, reportDate time.Time, count int) error
	CreateSchedule(ctx context.Context, messagingID string, schedule *models.Schedule) (uuid.UUID, error)
}
