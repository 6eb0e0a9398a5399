package services

import (
	"fmt"
	"time"
)

const (
	outcomeSent    = "sent"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// ItemError describes one unit of work (a reminder or a user digest) that failed.
type ItemError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// RunReport is the outcome of a single job run.
type RunReport struct {
	Job        string      `json:"job"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	Considered int         `json:"considered"`
	Sent       int         `json:"sent"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors,omitempty"`
}

func newRunReport(job string, started time.Time) *RunReport {
	return &RunReport{Job: job, StartedAt: started}
}

func (r *RunReport) fail(key string, err error) {
	r.Failed++
	r.addError(key, err)
}

func (r *RunReport) addError(key string, err error) {
	r.Errors = append(r.Errors, ItemError{Key: key, Error: err.Error()})
}

func (r *RunReport) String() string {
	return fmt.Sprintf("%s: considered=%d sent=%d skipped=%d failed=%d",
		r.Job, r.Considered, r.Sent, r.Skipped, r.Failed)
}
