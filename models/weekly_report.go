package models

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyReportLog holds one row per (user, report date).
type WeeklyReportLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_weekly_user_date;not null"`
	ReportDate     time.Time `gorm:"type:date;uniqueIndex:idx_weekly_user_date;not null"`
	SchedulesCount int       `gorm:"not null;default:0"`
	SentAt         time.Time `gorm:"not null"`
}
