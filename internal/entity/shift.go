package entity

import "github.com/gitrdm/scheduled/internal/scherr"

// OperatorShift describes one operator's availability window on one
// calendar day, expressed in TU offsets within that day (0..95).
type OperatorShift struct {
	OperatorID       string
	ShiftDate        string // caller-owned calendar-date key, e.g. "2024-01-02"
	StartTU          int
	EndTU            int
	IsAvailable      bool
	OvertimeAllowed  bool
	MaxOvertimeHours float64
}

// NewOperatorShift validates and constructs an OperatorShift.
func NewOperatorShift(operatorID, shiftDate string, startTU, endTU int, isAvailable, overtimeAllowed bool, maxOvertimeHours float64) (*OperatorShift, error) {
	if operatorID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "operator shift operator_id must not be empty")
	}
	if shiftDate == "" {
		return nil, scherr.New(scherr.InvalidEntity, "operator shift shift_date must not be empty", operatorID)
	}
	if startTU < 0 || startTU > 95 {
		return nil, scherr.New(scherr.InvalidEntity, "operator shift start_tu must be in [0,95]", operatorID, shiftDate)
	}
	if endTU < 0 || endTU > 95 {
		return nil, scherr.New(scherr.InvalidEntity, "operator shift end_tu must be in [0,95]", operatorID, shiftDate)
	}
	if startTU >= endTU {
		return nil, scherr.New(scherr.InvalidEntity, "operator shift start_tu must be < end_tu", operatorID, shiftDate)
	}
	if maxOvertimeHours < 0 {
		return nil, scherr.New(scherr.InvalidEntity, "operator shift max_overtime_hours must be >= 0", operatorID, shiftDate)
	}
	return &OperatorShift{
		OperatorID:       operatorID,
		ShiftDate:        shiftDate,
		StartTU:          startTU,
		EndTU:            endTU,
		IsAvailable:      isAvailable,
		OvertimeAllowed:  overtimeAllowed,
		MaxOvertimeHours: maxOvertimeHours,
	}, nil
}

// DurationTU returns the shift's width in TUs.
func (s *OperatorShift) DurationTU() int {
	return s.EndTU - s.StartTU
}
