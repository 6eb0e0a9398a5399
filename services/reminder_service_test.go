package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"recruit-reminder-backend/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDailyReminders_OffsetCoverage(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("+819012345678", day(2025, 3, 1))
	s := repo.addSchedule(user, models.TypeESSubmit, "トヨタ", day(2025, 3, 15))

	wantOffsets := map[string]int{
		"2025-03-05": 10,
		"2025-03-10": 5,
		"2025-03-12": 3,
		"2025-03-14": 1,
	}

	for d := day(2025, 3, 1); !d.After(day(2025, 3, 16)); d = d.AddDate(0, 0, 1) {
		sender := newRecordingSender()
		now := d.Add(8 * time.Hour)
		svc := NewReminderService(repo, sender, ReminderConfig{}, func() time.Time { return now }, nil)

		_, err := svc.SendDailyReminders(context.Background())
		require.NoError(t, err)

		offset, due := wantOffsets[d.Format(models.DateLayout)]
		if !due {
			assert.Empty(t, sender.reminders, "no reminder expected on %s", d.Format(models.DateLayout))
			continue
		}
		require.Len(t, sender.reminders, 1, d.Format(models.DateLayout))
		assert.Equal(t, offset, sender.reminders[0].Offset)
		assert.Equal(t, s.ID, sender.reminders[0].ScheduleID)
		assert.Equal(t, "+819012345678", sender.reminders[0].Recipient)
	}

	assert.Len(t, repo.logsFor(s.ID), 4)
}

func TestSendDailyReminders_Dedup(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("+819012345678", day(2025, 3, 1))
	s := repo.addSchedule(user, models.TypeInterview1, "リクルート", day(2025, 3, 15))
	sender := newRecordingSender()
	svc := NewReminderService(repo, sender, ReminderConfig{}, clockAt(2025, 3, 14), nil)

	first, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	second, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	assert.Len(t, sender.reminders, 1)
	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 0, second.Sent)
	assert.Equal(t, 1, second.Skipped)

	logs := repo.logsFor(s.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "D-1", logs[0].Kind)
	assert.True(t, logs[0].Success)
}

func TestSendDailyReminders_FailedAttemptIsNotRetried(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("U-broken", day(2025, 3, 1))
	s := repo.addSchedule(user, models.TypeSPITest, "楽天", day(2025, 3, 17))
	sender := newRecordingSender()
	sender.failFor["U-broken"] = errSend
	svc := NewReminderService(repo, sender, ReminderConfig{}, clockAt(2025, 3, 14), nil)

	report, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error, "push failed")

	logs := repo.logsFor(s.ID)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	require.NotNil(t, logs[0].Err)
	assert.Equal(t, "push failed", *logs[0].Err)

	delete(sender.failFor, "U-broken")
	report, err = svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, sender.reminders)
}

func TestSendDailyReminders_RetryFailed(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("U-flaky", day(2025, 3, 1))
	s := repo.addSchedule(user, models.TypeSPITest, "楽天", day(2025, 3, 17))
	sender := newRecordingSender()
	sender.failFor["U-flaky"] = errSend
	svc := NewReminderService(repo, sender, ReminderConfig{RetryFailed: true}, clockAt(2025, 3, 14), nil)

	_, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	delete(sender.failFor, "U-flaky")
	report, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	require.Len(t, sender.reminders, 1)

	report, err = svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Len(t, sender.reminders, 1)
	assert.Len(t, repo.logsFor(s.ID), 2)
}

func TestSendDailyReminders_FailureIsolation(t *testing.T) {
	repo := newMemoryRepo()
	broken := repo.addUser("U-broken", day(2025, 3, 1))
	ok := repo.addUser("U-ok", day(2025, 3, 1))
	repo.addSchedule(broken, models.TypeESSubmit, "A社", day(2025, 3, 24))
	badStatus := repo.addSchedule(ok, models.TypeESSubmit, "B社", day(2025, 3, 24))
	good := repo.addSchedule(ok, models.TypeESSubmit, "C社", day(2025, 3, 24))
	later := repo.addSchedule(ok, models.TypeFinalInterview, "D社", day(2025, 3, 15))
	repo.statusErr[badStatus.ID] = errors.New("connection reset")

	sender := newRecordingSender()
	sender.failFor["U-broken"] = errSend
	svc := NewReminderService(repo, sender, ReminderConfig{}, clockAt(2025, 3, 14), nil)

	report, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Considered)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 2, report.Failed)

	var sentIDs []string
	for _, r := range sender.reminders {
		sentIDs = append(sentIDs, r.ScheduleID.String())
	}
	assert.ElementsMatch(t, []string{good.ID.String(), later.ID.String()}, sentIDs)

	logs := repo.logsFor(badStatus.ID)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
}

func TestSendDailyReminders_QueryFailureStopsRun(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("U1", day(2025, 3, 1))
	repo.addSchedule(user, models.TypeESSubmit, "トヨタ", day(2025, 3, 15))
	repo.dueErr["2025-03-19"] = errors.New("db down")
	sender := newRecordingSender()
	svc := NewReminderService(repo, sender, ReminderConfig{}, clockAt(2025, 3, 14), nil)

	report, err := svc.SendDailyReminders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "D-5")
	assert.Empty(t, sender.reminders, "D-1 comes after the failing D-5 query")
	assert.NotNil(t, report)
}

func TestSendDailyReminders_OffsetOrder(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("U1", day(2025, 3, 1))
	repo.addSchedule(user, models.TypeInterview1, "D-1社", day(2025, 3, 2))
	repo.addSchedule(user, models.TypeInterview1, "D-10社", day(2025, 3, 11))
	repo.addSchedule(user, models.TypeInterview1, "D-3社", day(2025, 3, 4))
	repo.addSchedule(user, models.TypeInterview1, "D-5社", day(2025, 3, 6))
	sender := newRecordingSender()
	svc := NewReminderService(repo, sender, ReminderConfig{}, clockAt(2025, 3, 1), nil)

	_, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	var offsets []int
	for _, r := range sender.reminders {
		offsets = append(offsets, r.Offset)
	}
	assert.Equal(t, []int{10, 5, 3, 1}, offsets)
}

func TestSendDailyReminders_Metrics(t *testing.T) {
	repo := newMemoryRepo()
	user := repo.addUser("U1", day(2025, 3, 1))
	repo.addSchedule(user, models.TypeESSubmit, "トヨタ", day(2025, 3, 15))
	metrics := MustNewMetrics(prometheus.NewRegistry())
	svc := NewReminderService(repo, newRecordingSender(), ReminderConfig{}, clockAt(2025, 3, 14), metrics)

	_, err := svc.SendDailyReminders(context.Background())
	require.NoError(t, err)
	_, err = svc.SendDailyReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reminders.WithLabelValues("D-1", outcomeSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.reminders.WithLabelValues("D-1", outcomeSkipped)))
}
