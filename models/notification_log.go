// models/notification_log.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLog records every reminder dispatch attempt. Rows are append-only.
type NotificationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ScheduleID   uuid.UUID `gorm:"type:uuid;index:idx_notification_schedule_kind;not null"`
	Kind         string    `gorm:"type:varchar(16);index:idx_notification_schedule_kind;not null"` // D-10, D-5, ...
	Success      bool      `gorm:"not null"`
	ErrorMessage *string   `gorm:"type:text"`
	SentAt       time.Time `gorm:"not null"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	return
}

// ReminderKind is the log label for a reminder sent offset days ahead.
func ReminderKind(offset int) string {
	return fmt.Sprintf("D-%d", offset)
}
