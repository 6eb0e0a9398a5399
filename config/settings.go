package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	Port     string
	DBURL    string
	Location *time.Location

	DailyReminderCron    string
	WeeklyReportCron     string
	ReminderOffsets      []int
	RetryFailedReminders bool
	ActiveUserWindow     time.Duration
	WeeklyReportDays     int

	Notifier             string // twilio or log
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	CORSOrigins []string
}

// LoadDotEnv loads .env into the process environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("TIMEZONE", "Asia/Tokyo")
	v.SetDefault("DAILY_REMINDER_CRON", "0 8 * * *")
	v.SetDefault("WEEKLY_REPORT_CRON", "0 8 * * 1")
	v.SetDefault("REMINDER_OFFSETS", "10,5,3,1")
	v.SetDefault("RETRY_FAILED_REMINDERS", false)
	v.SetDefault("ACTIVE_USER_WINDOW_DAYS", 30)
	v.SetDefault("WEEKLY_REPORT_DAYS", 7)
	v.SetDefault("NOTIFIER", "twilio")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
}

// Load reads settings from the environment.
func Load() (*Settings, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	offsets, err := ParseOffsets(v.GetString("REMINDER_OFFSETS"))
	if err != nil {
		return nil, fmt.Errorf("REMINDER_OFFSETS: %w", err)
	}
	notifier := strings.ToLower(strings.TrimSpace(v.GetString("NOTIFIER")))
	if notifier != "twilio" && notifier != "log" {
		return nil, fmt.Errorf("NOTIFIER: unknown notifier %q", notifier)
	}
	window := v.GetInt("ACTIVE_USER_WINDOW_DAYS")
	rangeDays := v.GetInt("WEEKLY_REPORT_DAYS")
	if window <= 0 || rangeDays <= 0 {
		return nil, fmt.Errorf("ACTIVE_USER_WINDOW_DAYS and WEEKLY_REPORT_DAYS must be positive")
	}

	return &Settings{
		Port:                 v.GetString("PORT"),
		DBURL:                v.GetString("DB_URL"),
		Location:             loc,
		DailyReminderCron:    v.GetString("DAILY_REMINDER_CRON"),
		WeeklyReportCron:     v.GetString("WEEKLY_REPORT_CRON"),
		ReminderOffsets:      offsets,
		RetryFailedReminders: v.GetBool("RETRY_FAILED_REMINDERS"),
		ActiveUserWindow:     time.Duration(window) * 24 * time.Hour,
		WeeklyReportDays:     rangeDays,
		Notifier:             notifier,
		TwilioAccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),
		CORSOrigins:          splitList(v.GetString("CORS_ORIGINS")),
	}, nil
}

// ParseOffsets reads a comma separated list of positive day offsets,
// keeping the given order.
func ParseOffsets(raw string) ([]int, error) {
	var offsets []int
	seen := map[int]bool{}
	for _, part := range splitList(raw) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("offset must be positive, got %d", n)
		}
		if seen[n] {
			return nil, fmt.Errorf("duplicate offset %d", n)
		}
		seen[n] = true
		offsets = append(offsets, n)
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("no offsets given")
	}
	return offsets, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
