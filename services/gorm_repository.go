// services/gorm_repository.go
package services

import (
	"context"
	"fmt"
	"time"

	"recruit-reminder-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Repository = (*GormRepository)(nil)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetSchedulesDueOn(ctx context.Context, date time.Time) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("schedule_date = ?", date.Format(models.DateLayout)).
		Order("created_at").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("schedules due on %s: %w", date.Format(models.DateLayout), err)
	}
	return schedules, nil
}

func (r *GormRepository) NotificationStatus(ctx context.Context, scheduleID uuid.UUID, kind string) (NotificationStatus, error) {
	var outcomes []bool
	err := r.db.WithContext(ctx).
		Model(&models.NotificationLog{}).
		Where("schedule_id = ? AND kind = ?", scheduleID, kind).
		Pluck("success", &outcomes).Error
	if err != nil {
		return NotAttempted, fmt.Errorf("notification status %s/%s: %w", scheduleID, kind, err)
	}
	return foldNotificationStatus(outcomes), nil
}

// foldNotificationStatus reduces logged outcomes for one (schedule, kind).
// Any success wins over any number of failures.
func foldNotificationStatus(outcomes []bool) NotificationStatus {
	status := NotAttempted
	for _, ok := range outcomes {
		if ok {
			return Delivered
		}
		status = AttemptFailed
	}
	return status
}

func (r *GormRepository) LogNotification(ctx context.Context, scheduleID uuid.UUID, kind string, success bool, errMsg *string) error {
	entry := models.NotificationLog{
		ScheduleID:   scheduleID,
		Kind:         kind,
		Success:      success,
		ErrorMessage: errMsg,
		SentAt:       time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("log notification %s/%s: %w", scheduleID, kind, err)
	}
	return nil
}

func (r *GormRepository) GetActiveUsers(ctx context.Context, since time.Time) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("last_active_at > ?", since).
		Order("created_at").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return users, nil
}

func (r *GormRepository) GetUserSchedulesInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND schedule_date BETWEEN ? AND ?",
			userID, start.Format(models.DateLayout), end.Format(models.DateLayout)).
		Order("schedule_date, created_at").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("schedules for user %s: %w", userID, err)
	}
	return schedules, nil
}

// LogWeeklyReport upserts on (user_id, report_date).
func (r *GormRepository) LogWeeklyReport(ctx context.Context, userID uuid.UUID, reportDate time.Time, count int) error {
	row := models.WeeklyReportLog{
		ID:             uuid.New(),
		UserID:         userID,
		ReportDate:     reportDate,
		SchedulesCount: count,
		SentAt:         time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"schedules_count", "sent_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("log weekly report for user %s: %w", userID, err)
	}
	return nil
}

// CreateSchedule stores schedule for the user behind messagingID, creating the
// user on first contact.
func (r *GormRepository) CreateSchedule(ctx context.Context, messagingID string, schedule *models.Schedule) (uuid.UUID, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findOrCreateUser(tx, messagingID)
		if err != nil {
			return err
		}
		schedule.UserID = user.ID
		return tx.Create(schedule).Error
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create schedule: %w", err)
	}
	return schedule.ID, nil
}

// TouchUser records activity for messagingID, creating the user if needed.
func (r *GormRepository) TouchUser(ctx context.Context, messagingID string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findOrCreateUser(tx, messagingID)
		if err != nil {
			return err
		}
		return tx.Model(&user).Update("last_active_at", at).Error
	})
}

// ListUserSchedules returns a user's schedules ordered by date. month, when
// set, has the form YYYY-MM.
func (r *GormRepository) ListUserSchedules(ctx context.Context, messagingID, month string) ([]models.Schedule, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = schedules.user_id").
		Where("users.messaging_id = ?", messagingID)

	if month != "" {
		first, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q: %w", month, err)
		}
		q = q.Where("schedules.schedule_date >= ? AND schedules.schedule_date < ?",
			first.Format(models.DateLayout), first.AddDate(0, 1, 0).Format(models.DateLayout))
	}

	var schedules []models.Schedule
	if err := q.Order("schedules.schedule_date ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

func findOrCreateUser(tx *gorm.DB, messagingID string) (models.User, error) {
	var user models.User
	err := tx.Where(models.User{MessagingID: messagingID}).FirstOrCreate(&user).Error
	return user, err
}
