package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/problem"
)

// problemDoc is the on-disk JSON shape a caller hands this CLI. It
// mirrors the entity constructors field-for-field rather than the
// entity structs themselves, so zero values stay meaningful (e.g. an
// absent due_date is nil, not the zero time).
type problemDoc struct {
	Machines  []machineDoc  `json:"machines"`
	WorkCells []workCellDoc `json:"work_cells"`
	Jobs      []jobDoc      `json:"jobs"`
	Tasks     []taskDoc     `json:"tasks"`
	Operators []operatorDoc `json:"operators"`
	Skills    []skillDoc    `json:"skills"`

	TaskSkillRequirements []taskSkillReqDoc `json:"task_skill_requirements"`
	Shifts                []shiftDoc        `json:"shifts"`
	Precedences           []precedenceDoc   `json:"precedences"`
}

type machineDoc struct {
	ResourceID  string  `json:"resource_id"`
	CellID      string  `json:"cell_id"`
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	CostPerHour float64 `json:"cost_per_hour"`
}

type workCellDoc struct {
	CellID            string   `json:"cell_id"`
	Name              string   `json:"name"`
	Capacity          int      `json:"capacity"`
	WIPLimit          int      `json:"wip_limit"`
	TargetUtilization float64  `json:"target_utilization"`
	FlowPriority      int      `json:"flow_priority"`
	Machines          []string `json:"machines"`
}

type jobDoc struct {
	JobID       string     `json:"job_id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type modeDoc struct {
	ModeID            string `json:"mode_id"`
	MachineResourceID string `json:"machine_resource_id"`
	DurationMinutes   int    `json:"duration_minutes"`
}

type taskDoc struct {
	TaskID          string    `json:"task_id"`
	JobID           string    `json:"job_id"`
	Name            string    `json:"name"`
	DepartmentID    string    `json:"department_id"`
	IsUnattended    bool      `json:"is_unattended"`
	IsSetup         bool      `json:"is_setup"`
	SequenceID      string    `json:"sequence_id"`
	MinOperators    int       `json:"min_operators"`
	MaxOperators    int       `json:"max_operators"`
	EfficiencyCurve string    `json:"efficiency_curve"`
	Modes           []modeDoc `json:"modes"`
}

type operatorSkillDoc struct {
	SkillID string `json:"skill_id"`
	Level   int    `json:"level"`
	Years   float64 `json:"years"`
}

type operatorDoc struct {
	OperatorID     string             `json:"operator_id"`
	Name           string             `json:"name"`
	HourlyRate     float64            `json:"hourly_rate"`
	MaxHoursPerDay float64            `json:"max_hours_per_day"`
	Skills         []operatorSkillDoc `json:"skills"`
}

type skillDoc struct {
	SkillID string `json:"skill_id"`
	Name    string `json:"name"`
}

type taskSkillReqDoc struct {
	TaskID          string `json:"task_id"`
	SkillID         string `json:"skill_id"`
	RequiredLevel   int    `json:"required_level"`
	IsMandatory     bool   `json:"is_mandatory"`
	Weight          float64 `json:"weight"`
	OperatorsNeeded int    `json:"operators_needed"`
}

type shiftDoc struct {
	OperatorID       string  `json:"operator_id"`
	ShiftDate        string  `json:"shift_date"`
	StartTU          int     `json:"start_tu"`
	EndTU            int     `json:"end_tu"`
	IsAvailable      bool    `json:"is_available"`
	OvertimeAllowed  bool    `json:"overtime_allowed"`
	MaxOvertimeHours float64 `json:"max_overtime_hours"`
}

type precedenceDoc struct {
	PredTaskID string `json:"pred_task_id"`
	SuccTaskID string `json:"succ_task_id"`
}

func efficiencyCurveFromString(s string) (entity.EfficiencyCurve, error) {
	switch s {
	case "", "linear":
		return entity.EfficiencyLinear, nil
	case "diminishing":
		return entity.EfficiencyDiminishing, nil
	case "constant":
		return entity.EfficiencyConstant, nil
	default:
		return 0, fmt.Errorf("unknown efficiency_curve %q", s)
	}
}

// decodeProblem parses a problemDoc from r and assembles it into a
// validated *problem.Problem via problem.Builder, surfacing every
// entity construction or assembly error as one wrapped error.
func decodeProblem(r io.Reader) (*problem.Problem, error) {
	var doc problemDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode problem document: %w", err)
	}

	b := problem.NewBuilder()

	for _, m := range doc.Machines {
		machine, err := entity.NewMachine(m.ResourceID, m.CellID, m.Name, m.Capacity, m.CostPerHour)
		if err != nil {
			return nil, err
		}
		b.AddMachine(*machine)
	}

	for _, w := range doc.WorkCells {
		cell, err := entity.NewWorkCell(w.CellID, w.Name, w.Capacity, w.WIPLimit, w.TargetUtilization, w.FlowPriority, w.Machines)
		if err != nil {
			return nil, err
		}
		b.AddWorkCell(*cell)
	}

	for _, j := range doc.Jobs {
		job, err := entity.NewJob(j.JobID, j.Description, j.DueDate)
		if err != nil {
			return nil, err
		}
		for _, t := range doc.Tasks {
			if t.JobID == j.JobID {
				job.TaskIDs = append(job.TaskIDs, t.TaskID)
			}
		}
		b.AddJob(*job)
	}

	for _, t := range doc.Tasks {
		curve, err := efficiencyCurveFromString(t.EfficiencyCurve)
		if err != nil {
			return nil, err
		}
		minOps, maxOps := t.MinOperators, t.MaxOperators
		if minOps == 0 && maxOps == 0 {
			minOps, maxOps = 1, 1
		}
		task, err := entity.NewTask(t.TaskID, t.JobID, t.Name, minOps, maxOps, curve)
		if err != nil {
			return nil, err
		}
		task.DepartmentID = t.DepartmentID
		task.IsUnattended = t.IsUnattended
		task.IsSetup = t.IsSetup
		task.SequenceID = t.SequenceID
		for _, md := range t.Modes {
			mode, err := entity.NewTaskMode(md.ModeID, t.TaskID, md.MachineResourceID, md.DurationMinutes)
			if err != nil {
				return nil, err
			}
			task.Modes = append(task.Modes, *mode)
		}
		b.AddTask(*task)
	}

	for _, s := range doc.Skills {
		skill, err := entity.NewSkill(s.SkillID, s.Name)
		if err != nil {
			return nil, err
		}
		b.AddSkill(*skill)
	}

	for _, o := range doc.Operators {
		op, err := entity.NewOperator(o.OperatorID, o.Name, o.HourlyRate, o.MaxHoursPerDay)
		if err != nil {
			return nil, err
		}
		for _, sk := range o.Skills {
			opSkill, err := entity.NewOperatorSkill(o.OperatorID, sk.SkillID, entity.SkillLevel(sk.Level), sk.Years)
			if err != nil {
				return nil, err
			}
			op.Skills = append(op.Skills, *opSkill)
		}
		b.AddOperator(*op)
	}

	for _, r := range doc.TaskSkillRequirements {
		req, err := entity.NewTaskSkillRequirement(r.TaskID, r.SkillID, entity.SkillLevel(r.RequiredLevel), r.IsMandatory, r.Weight, r.OperatorsNeeded)
		if err != nil {
			return nil, err
		}
		b.AddTaskSkillReq(*req)
	}

	for _, s := range doc.Shifts {
		shift, err := entity.NewOperatorShift(s.OperatorID, s.ShiftDate, s.StartTU, s.EndTU, s.IsAvailable, s.OvertimeAllowed, s.MaxOvertimeHours)
		if err != nil {
			return nil, err
		}
		b.AddShift(*shift)
	}

	for _, pr := range doc.Precedences {
		prec, err := entity.NewPrecedence(pr.PredTaskID, pr.SuccTaskID)
		if err != nil {
			return nil, err
		}
		b.AddPrecedence(*prec)
	}

	return b.Assemble()
}
