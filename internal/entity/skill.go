package entity

import "github.com/gitrdm/scheduled/internal/scherr"

// Skill is a named capability an operator may hold and a task may
// require.
type Skill struct {
	SkillID string
	Name    string
}

// NewSkill validates and constructs a Skill.
func NewSkill(skillID, name string) (*Skill, error) {
	if skillID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "skill skill_id must not be empty")
	}
	return &Skill{SkillID: skillID, Name: name}, nil
}

// SkillLevel is a four-rung proficiency scale. Each level carries a
// fixed efficiency multiplier used by task-efficiency computation
// (§4.5.10).
type SkillLevel int

const (
	Novice     SkillLevel = 1
	Competent  SkillLevel = 2
	Proficient SkillLevel = 3
	Expert     SkillLevel = 4
)

func (l SkillLevel) Valid() bool {
	return l >= Novice && l <= Expert
}

// Multiplier returns the efficiency multiplier for this level: 0.5 /
// 0.75 / 1.0 / 1.25 for Novice..Expert.
func (l SkillLevel) Multiplier() float64 {
	switch l {
	case Novice:
		return 0.5
	case Competent:
		return 0.75
	case Proficient:
		return 1.0
	case Expert:
		return 1.25
	default:
		return 0
	}
}

// OperatorSkill records one operator's proficiency in one skill.
type OperatorSkill struct {
	OperatorID string
	SkillID    string
	Level      SkillLevel
	Years      float64
	LastUsed   *string // opaque date string; interpretation is caller-owned
}

// NewOperatorSkill validates and constructs an OperatorSkill.
func NewOperatorSkill(operatorID, skillID string, level SkillLevel, years float64) (*OperatorSkill, error) {
	if operatorID == "" || skillID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "operator skill requires operator_id and skill_id")
	}
	if !level.Valid() {
		return nil, scherr.New(scherr.InvalidEntity, "operator skill level is not a known enum value", operatorID, skillID)
	}
	if years < 0 {
		return nil, scherr.New(scherr.InvalidEntity, "operator skill years must be >= 0", operatorID, skillID)
	}
	return &OperatorSkill{OperatorID: operatorID, SkillID: skillID, Level: level, Years: years}, nil
}

// TaskSkillRequirement expresses that a task requires a minimum skill
// level from one or more operators.
type TaskSkillRequirement struct {
	TaskID          string
	SkillID         string
	RequiredLevel   SkillLevel
	IsMandatory     bool
	Weight          float64
	OperatorsNeeded int
}

// NewTaskSkillRequirement validates and constructs a TaskSkillRequirement.
func NewTaskSkillRequirement(taskID, skillID string, requiredLevel SkillLevel, isMandatory bool, weight float64, operatorsNeeded int) (*TaskSkillRequirement, error) {
	if taskID == "" || skillID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "task skill requirement requires task_id and skill_id")
	}
	if !requiredLevel.Valid() {
		return nil, scherr.New(scherr.InvalidEntity, "task skill requirement level is not a known enum value", taskID, skillID)
	}
	if weight <= 0 {
		return nil, scherr.New(scherr.InvalidEntity, "task skill requirement weight must be > 0", taskID, skillID)
	}
	if operatorsNeeded < 1 {
		return nil, scherr.New(scherr.InvalidEntity, "task skill requirement operators_needed must be >= 1", taskID, skillID)
	}
	return &TaskSkillRequirement{
		TaskID:          taskID,
		SkillID:         skillID,
		RequiredLevel:   requiredLevel,
		IsMandatory:     isMandatory,
		Weight:          weight,
		OperatorsNeeded: operatorsNeeded,
	}, nil
}
