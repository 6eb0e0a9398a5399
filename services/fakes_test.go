package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"recruit-reminder-backend/models"

	"github.com/google/uuid"
)

var jst = time.FixedZone("JST", 9*60*60)

func clockAt(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 8, 0, 0, 0, jst) }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, jst)
}

type logEntry struct {
	ScheduleID uuid.UUID
	Kind       string
	Success    bool
	Err        *string
}

type weeklyKey struct {
	UserID uuid.UUID
	Date   string
}

var (
	_ Repository         = (*memoryRepo)(nil)
	_ NotificationSender = (*recordingSender)(nil)
	_ NotificationSender = (*TwilioSender)(nil)
	_ NotificationSender = (*LogSender)(nil)
)

type memoryRepo struct {
	mu        sync.Mutex
	users     []models.User
	schedules []models.Schedule
	logs      []logEntry
	weekly    map[weeklyKey]int

	dueErr    map[string]error // by date
	statusErr map[uuid.UUID]error
	rangeErr  map[uuid.UUID]error
	usersErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		weekly:    map[weeklyKey]int{},
		dueErr:    map[string]error{},
		statusErr: map[uuid.UUID]error{},
		rangeErr:  map[uuid.UUID]error{},
	}
}

func (r *memoryRepo) addUser(messagingID string, lastActive time.Time) models.User {
	u := models.User{ID: uuid.New(), MessagingID: messagingID, LastActiveAt: lastActive}
	r.users = append(r.users, u)
	return u
}

func (r *memoryRepo) addSchedule(user models.User, typ models.ScheduleType, company string, date time.Time) models.Schedule {
	s := models.Schedule{ID: uuid.New(), UserID: user.ID, User: user, Type: typ, CompanyName: company, ScheduleDate: date}
	r.schedules = append(r.schedules, s)
	return s
}

func (r *memoryRepo) GetSchedulesDueOn(_ context.Context, date time.Time) ([]models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := date.Format(models.DateLayout)
	if err := r.dueErr[key]; err != nil {
		return nil, err
	}
	var out []models.Schedule
	for _, s := range r.schedules {
		if s.DateString() == key {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryRepo) NotificationStatus(_ context.Context, scheduleID uuid.UUID, kind string) (NotificationStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.statusErr[scheduleID]; err != nil {
		return NotAttempted, err
	}
	status := NotAttempted
	for _, l := range r.logs {
		if l.ScheduleID == scheduleID && l.Kind == kind {
			if l.Success {
				return Delivered, nil
			}
			status = AttemptFailed
		}
	}
	return status, nil
}

func (r *memoryRepo) LogNotification(_ context.Context, scheduleID uuid.UUID, kind string, success bool, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, logEntry{ScheduleID: scheduleID, Kind: kind, Success: success, Err: errMsg})
	return nil
}

func (r *memoryRepo) GetActiveUsers(_ context.Context, since time.Time) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usersErr != nil {
		return nil, r.usersErr
	}
	var out []models.User
	for _, u := range r.users {
		if u.LastActiveAt.After(since) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetUserSchedulesInRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.rangeErr[userID]; err != nil {
		return nil, err
	}
	var out []models.Schedule
	for _, s := range r.schedules {
		if s.UserID == userID && !s.ScheduleDate.Before(start) && !s.ScheduleDate.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryRepo) LogWeeklyReport(_ context.Context, userID uuid.UUID, reportDate time.Time, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weekly[weeklyKey{userID, reportDate.Format(models.DateLayout)}] = count
	return nil
}

func (r *memoryRepo) CreateSchedule(_ context.Context, messagingID string, schedule *models.Schedule) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owner *models.User
	for i := range r.users {
		if r.users[i].MessagingID == messagingID {
			owner = &r.users[i]
		}
	}
	if owner == nil {
		r.users = append(r.users, models.User{ID: uuid.New(), MessagingID: messagingID})
		owner = &r.users[len(r.users)-1]
	}
	schedule.ID = uuid.New()
	schedule.UserID = owner.ID
	schedule.User = *owner
	r.schedules = append(r.schedules, *schedule)
	return schedule.ID, nil
}

func (r *memoryRepo) logsFor(scheduleID uuid.UUID) []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logEntry
	for _, l := range r.logs {
		if l.ScheduleID == scheduleID {
			out = append(out, l)
		}
	}
	return out
}

type sentReminder struct {
	Recipient  string
	ScheduleID uuid.UUID
	Offset     int
}

type sentSummary struct {
	Recipient string
	Count     int
	Start     string
	End       string
}

type recordingSender struct {
	mu        sync.Mutex
	reminders []sentReminder
	summaries []sentSummary
	failFor   map[string]error // by recipient
}

func newRecordingSender() *recordingSender {
	return &recordingSender{failFor: map[string]error{}}
}

func (s *recordingSender) SendReminder(_ context.Context, recipient string, schedule models.Schedule, offsetDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[recipient]; err != nil {
		return err
	}
	s.reminders = append(s.reminders, sentReminder{recipient, schedule.ID, offsetDays})
	return nil
}

func (s *recordingSender) SendSummary(_ context.Context, recipient string, schedules []models.Schedule, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[recipient]; err != nil {
		return err
	}
	s.summaries = append(s.summaries, sentSummary{recipient, len(schedules), start.Format(models.DateLayout), end.Format(models.DateLayout)})
	return nil
}

var errSend = errors.New("push failed")
