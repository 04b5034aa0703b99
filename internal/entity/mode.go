package entity

import "github.com/gitrdm/scheduled/internal/scherr"

// TaskMode represents one way to execute one task on one machine.
type TaskMode struct {
	ModeID            string
	TaskID            string
	MachineResourceID string
	DurationMinutes   int
}

// NewTaskMode validates and constructs a TaskMode.
func NewTaskMode(modeID, taskID, machineResourceID string, durationMinutes int) (*TaskMode, error) {
	if modeID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "task mode mode_id must not be empty")
	}
	if taskID == "" || machineResourceID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "task mode requires task_id and machine_resource_id", modeID)
	}
	if durationMinutes <= 0 {
		return nil, scherr.New(scherr.InvalidEntity, "task mode duration_minutes must be > 0", modeID)
	}
	return &TaskMode{
		ModeID:            modeID,
		TaskID:            taskID,
		MachineResourceID: machineResourceID,
		DurationMinutes:   durationMinutes,
	}, nil
}
