package entity

import "github.com/gitrdm/scheduled/internal/scherr"

// Operator is a person who can be assigned to tasks that require
// human attendance.
type Operator struct {
	OperatorID     string
	Name           string
	Skills         []OperatorSkill
	HourlyRate     float64
	MaxHoursPerDay float64
	IsActive       bool
	DepartmentID   string
}

// NewOperator validates and constructs an Operator.
func NewOperator(operatorID, name string, hourlyRate, maxHoursPerDay float64) (*Operator, error) {
	if operatorID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "operator operator_id must not be empty")
	}
	if hourlyRate < 0 {
		return nil, scherr.New(scherr.InvalidEntity, "operator hourly_rate must be >= 0", operatorID)
	}
	if maxHoursPerDay <= 0 {
		return nil, scherr.New(scherr.InvalidEntity, "operator max_hours_per_day must be > 0", operatorID)
	}
	return &Operator{
		OperatorID:     operatorID,
		Name:           name,
		HourlyRate:     hourlyRate,
		MaxHoursPerDay: maxHoursPerDay,
		IsActive:       true,
	}, nil
}

// SkillLevelFor returns the operator's proficiency in a skill, if any.
func (o *Operator) SkillLevelFor(skillID string) (SkillLevel, bool) {
	for _, s := range o.Skills {
		if s.SkillID == skillID {
			return s.Level, true
		}
	}
	return 0, false
}

// HasSkillAtLeast reports whether the operator holds skillID at or
// above the required level.
func (o *Operator) HasSkillAtLeast(skillID string, required SkillLevel) bool {
	level, ok := o.SkillLevelFor(skillID)
	return ok && level >= required
}
