package entity

import (
	"time"

	"github.com/gitrdm/scheduled/internal/scherr"
)

// Pattern (JobPattern) is a canonical job blueprint: tasks and
// precedences expressed in terms of pattern-task IDs, expanded against
// one or more Instances. Earlier source terminology called this a
// "template".
type Pattern struct {
	PatternID    string
	Name         string
	PatternTasks []Task
	Precedences  []Precedence
}

// NewPattern validates and constructs a Pattern. Cycle detection happens
// at problem-assembly time, once the full precedence list is known.
func NewPattern(patternID, name string) (*Pattern, error) {
	if patternID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "pattern pattern_id must not be empty")
	}
	return &Pattern{PatternID: patternID, Name: name}, nil
}

// Instance is a lightweight job referencing a pattern. Its tasks are
// derived by concatenating instance_id + "_" + pattern_task_id.
type Instance struct {
	InstanceID  string
	PatternID   string
	Description string
	DueDate     *time.Time
}

// NewInstance validates and constructs an Instance.
func NewInstance(instanceID, patternID, description string, dueDate *time.Time) (*Instance, error) {
	if instanceID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "instance instance_id must not be empty")
	}
	if patternID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "instance patten_id must not be empty", instanceID)
	}
	var due *time.Time
	if dueDate != nil {
		utc := dueDate.UTC()
		due = &utc
	}
	return &Instance{
		InstanceID:  instanceID,
		PatternID:   patternID,
		Description: description,
		DueDate:     due,
	}, nil
}

// InstanceTaskID derives the expanded task ID for a pattern task within
// one instance. The first underscore is the separator, so the inverse
// is unique only while instance IDs contain no underscore.
func InstanceTaskID(instanceID, patternTaskID string) string {
	return instanceID + "_" + patternTaskID
}
