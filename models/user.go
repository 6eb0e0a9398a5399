package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns schedules. MessagingID is the address the notifier delivers to
// (a phone number in E.164 form for WhatsApp, anything else goes out as SMS).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	MessagingID  string    `gorm:"uniqueIndex;not null"`
	DisplayName  string
	LastActiveAt time.Time `gorm:"index"`

	Schedules []Schedule `gorm:"foreignKey:UserID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = time.Now()
	}
	return
}
