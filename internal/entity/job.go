package entity

import (
	"time"

	"github.com/gitrdm/scheduled/internal/scherr"
)

// Job is a unique (non-pattern-derived) unit of work composed of tasks.
type Job struct {
	JobID       string
	Description string
	DueDate     *time.Time // reinterpreted as UTC if naive, per invariant 5
	TaskIDs     []string
}

// NewJob validates and constructs a Job. A nil dueDate means no due date.
func NewJob(jobID, description string, dueDate *time.Time) (*Job, error) {
	if jobID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "job job_id must not be empty")
	}
	var due *time.Time
	if dueDate != nil {
		utc := dueDate.UTC()
		due = &utc
	}
	return &Job{
		JobID:       jobID,
		Description: description,
		DueDate:     due,
	}, nil
}

// Precedence links a predecessor task to a successor task. pred != succ.
type Precedence struct {
	PredTaskID string
	SuccTaskID string
}

// NewPrecedence validates and constructs a Precedence.
func NewPrecedence(predTaskID, succTaskID string) (*Precedence, error) {
	if predTaskID == "" || succTaskID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "precedence requires non-empty pred_task_id and succ_task_id")
	}
	if predTaskID == succTaskID {
		return nil, scherr.New(scherr.InvalidEntity, "precedence cannot be self-referential", predTaskID)
	}
	return &Precedence{PredTaskID: predTaskID, SuccTaskID: succTaskID}, nil
}
