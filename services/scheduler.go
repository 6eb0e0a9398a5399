// services/scheduler.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job is already running")
)

// JobFunc is one run of a scheduled job.
type JobFunc func(ctx context.Context) (*RunReport, error)

// Job is an entry in the scheduler's job table.
type Job struct {
	Name string
	Spec string // five-field cron expression
	Run  JobFunc
}

type scheduledJob struct {
	Job
	schedule cron.Schedule
	running  sync.Mutex
}

// JobTable wires the daily reminder pass and the weekly digest to their
// cron expressions.
func JobTable(reminders *ReminderService, weekly *WeeklyReportService, dailySpec, weeklySpec string) []Job {
	return []Job{
		{Name: DailyRemindersJob, Spec: dailySpec, Run: reminders.SendDailyReminders},
		{Name: WeeklyReportJob, Spec: weeklySpec, Run: weekly.SendWeeklyReports},
	}
}

// Scheduler fires jobs on cron schedules in a fixed location. A job never
// overlaps with itself: a trigger that arrives while the previous run is still
// going is skipped, whether it came from cron or from RunNow.
type Scheduler struct {
	cron   *cron.Cron
	parser cron.Parser
	loc    *time.Location
	now    func() time.Time
	logger *log.Logger
	jobs   map[string]*scheduledJob
}

// NewScheduler validates every job's spec and returns an unstarted scheduler.
// now is used for Next and DueBetween; nil means the wall clock.
func NewScheduler(loc *time.Location, jobs []Job, now func() time.Time) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	logger := log.New(os.Stdout, "[scheduler] ", log.LstdFlags)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		parser: parser,
		loc:    loc,
		now:    now,
		logger: logger,
		jobs:   make(map[string]*scheduledJob),
	}

	for _, j := range jobs {
		if err := s.add(j); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(j Job) error {
	if _, exists := s.jobs[j.Name]; exists {
		return fmt.Errorf("job %q registered twice", j.Name)
	}
	if j.Run == nil {
		return fmt.Errorf("job %q has no run function", j.Name)
	}
	schedule, err := s.parser.Parse(j.Spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression for %q: %w", j.Name, err)
	}

	sj := &scheduledJob{Job: j, schedule: schedule}
	if _, err := s.cron.AddFunc(j.Spec, func() {
		if _, err := s.execute(context.Background(), sj); err != nil && !errors.Is(err, ErrJobRunning) {
			s.logger.Printf("job %q failed: %v", sj.Name, err)
		}
	}); err != nil {
		return fmt.Errorf("register %q: %w", j.Name, err)
	}
	s.jobs[j.Name] = sj
	s.logger.Printf("registered job %q (schedule=%s, tz=%s)", j.Name, j.Spec, s.loc)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Printf("started with %d jobs", len(s.jobs))
}

// Stop stops firing new runs and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Println("stopping")
	return ctx
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*RunReport, error) {
	sj, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(ctx, sj)
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob) (report *RunReport, err error) {
	if !sj.running.TryLock() {
		s.logger.Printf("job %q still running, skipping trigger", sj.Name)
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, sj.Name)
	}
	defer sj.running.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %q panicked: %v", sj.Name, r)
		}
	}()

	report, err = sj.Run(ctx)
	if report != nil {
		s.logger.Printf("job %q finished: %s", sj.Name, report)
	}
	return report, err
}

// Next returns the next fire time of a job after the scheduler clock's now.
func (s *Scheduler) Next(name string) (time.Time, error) {
	sj, ok := s.jobs[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return sj.schedule.Next(s.now().In(s.loc)), nil
}

// DueBetween lists the jobs that would fire in (from, to], ordered by fire
// time then name.
func (s *Scheduler) DueBetween(from, to time.Time) []string {
	type firing struct {
		at   time.Time
		name string
	}
	var firings []firing
	for name, sj := range s.jobs {
		for t := sj.schedule.Next(from.In(s.loc)); !t.IsZero() && !t.After(to); t = sj.schedule.Next(t) {
			firings = append(firings, firing{at: t, name: name})
		}
	}
	sort.Slice(firings, func(i, j int) bool {
		if firings[i].at.Equal(firings[j].at) {
			return firings[i].name < firings[j].name
		}
		return firings[i].at.Before(firings[j].at)
	})
	names := make([]string, len(firings))
	for i, f := range firings {
		names[i] = f.name
	}
	return names
}

// JobNames returns registered job names in sorted order.
func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
