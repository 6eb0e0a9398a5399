// models/schedule.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-date format used in storage queries and messages.
const DateLayout = "2006-01-02"

type Schedule struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID    `gorm:"type:uuid;index;not null"`
	Type         ScheduleType `gorm:"type:varchar(32);not null;default:'OTHER'"`
	CompanyName  string       `gorm:"not null"`
	ScheduleDate time.Time    `gorm:"type:date;index;not null"`
	ScheduleTime *string      `gorm:"type:varchar(8)"`
	Location     *string
	Memo         *string `gorm:"type:text"`

	User User `gorm:"foreignKey:UserID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if !s.Type.Valid() {
		s.Type = TypeOther
	}
	return
}

// DateString renders the appointment date as YYYY-MM-DD.
func (s Schedule) DateString() string {
	return s.ScheduleDate.Format(DateLayout)
}

// Recipient is the owner's messaging address, available when User is loaded.
func (s Schedule) Recipient() string {
	return s.User.MessagingID
}
