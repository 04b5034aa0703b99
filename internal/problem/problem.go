// Package problem assembles validated entity records into a single
// cross-linked Problem: lookup indices, precedence back-references,
// and pattern/instance task expansion.
package problem

import (
	"fmt"

	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/scherr"
)

// Problem owns every entity record for one scheduling run plus the
// indices built over them. It is immutable once Assemble returns
// successfully; constraint compilation borrows it by reference.
type Problem struct {
	Machines  []entity.Machine
	WorkCells []entity.WorkCell
	Jobs      []entity.Job
	Tasks     []entity.Task
	Patterns  []entity.Pattern
	Instances []entity.Instance
	Operators []entity.Operator
	Skills    []entity.Skill

	TaskSkillReqs []entity.TaskSkillRequirement
	Shifts        []entity.OperatorShift

	// expandedPrecedences holds the unique-job precedence list plus, in
	// pattern mode, every pattern precedence expanded per instance.
	expandedPrecedences []entity.Precedence

	TaskIndex    map[string]*entity.Task
	MachineIndex map[string]*entity.Machine
	JobIndex     map[string]*entity.Job
	OperatorIndex map[string]*entity.Operator
	SkillIndex   map[string]*entity.Skill

	TaskSkillReqIndex map[string][]entity.TaskSkillRequirement

	// IsPatternMode is true when Patterns and Instances were supplied
	// instead of Jobs; Assemble then expands them into Tasks and Jobs.
	IsPatternMode bool
}

// Builder accumulates raw entity records before Assemble validates and
// cross-links them.
type Builder struct {
	p *Problem
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{p: &Problem{}}
}

func (b *Builder) AddMachine(m entity.Machine) *Builder   { b.p.Machines = append(b.p.Machines, m); return b }
func (b *Builder) AddWorkCell(w entity.WorkCell) *Builder { b.p.WorkCells = append(b.p.WorkCells, w); return b }
func (b *Builder) AddJob(j entity.Job) *Builder           { b.p.Jobs = append(b.p.Jobs, j); return b }
func (b *Builder) AddTask(t entity.Task) *Builder         { b.p.Tasks = append(b.p.Tasks, t); return b }
func (b *Builder) AddPattern(pt entity.Pattern) *Builder  { b.p.Patterns = append(b.p.Patterns, pt); b.p.IsPatternMode = true; return b }
func (b *Builder) AddInstance(i entity.Instance) *Builder { b.p.Instances = append(b.p.Instances, i); return b }
func (b *Builder) AddOperator(o entity.Operator) *Builder { b.p.Operators = append(b.p.Operators, o); return b }
func (b *Builder) AddSkill(s entity.Skill) *Builder       { b.p.Skills = append(b.p.Skills, s); return b }
func (b *Builder) AddTaskSkillReq(r entity.TaskSkillRequirement) *Builder {
	b.p.TaskSkillReqs = append(b.p.TaskSkillReqs, r)
	return b
}
func (b *Builder) AddShift(s entity.OperatorShift) *Builder {
	b.p.Shifts = append(b.p.Shifts, s)
	return b
}
func (b *Builder) AddPrecedence(pr entity.Precedence) *Builder {
	b.p.expandedPrecedences = append(b.p.expandedPrecedences, pr)
	return b
}

// Assemble validates the accumulated records, expands pattern mode
// into a flat task space, builds all lookup indices, and rebuilds
// precedence back-references. It returns *scherr.Error{Kind:
// InvalidProblem} on any validation failure.
func (b *Builder) Assemble() (*Problem, error) {
	p := b.p

	if p.IsPatternMode {
		if err := p.expandPatterns(); err != nil {
			return nil, err
		}
	}

	p.MachineIndex = make(map[string]*entity.Machine, len(p.Machines))
	for i := range p.Machines {
		p.MachineIndex[p.Machines[i].ResourceID] = &p.Machines[i]
	}
	p.JobIndex = make(map[string]*entity.Job, len(p.Jobs))
	for i := range p.Jobs {
		p.JobIndex[p.Jobs[i].JobID] = &p.Jobs[i]
	}
	p.OperatorIndex = make(map[string]*entity.Operator, len(p.Operators))
	for i := range p.Operators {
		p.OperatorIndex[p.Operators[i].OperatorID] = &p.Operators[i]
	}
	p.SkillIndex = make(map[string]*entity.Skill, len(p.Skills))
	for i := range p.Skills {
		p.SkillIndex[p.Skills[i].SkillID] = &p.Skills[i]
	}
	p.TaskIndex = make(map[string]*entity.Task, len(p.Tasks))
	for i := range p.Tasks {
		p.TaskIndex[p.Tasks[i].TaskID] = &p.Tasks[i]
	}
	p.TaskSkillReqIndex = make(map[string][]entity.TaskSkillRequirement, len(p.TaskSkillReqs))
	for _, r := range p.TaskSkillReqs {
		p.TaskSkillReqIndex[r.TaskID] = append(p.TaskSkillReqIndex[r.TaskID], r)
	}

	rebuildPrecedenceLinks(p)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// expandPatterns materializes one Task per (instance, pattern task),
// with task IDs and job IDs rewritten via entity.InstanceTaskID, one
// Job per instance, and one stored Precedence per (instance, pattern
// precedence). Expansion is eager: both tasks and precedences take
// memory proportional to |pattern|·|instances|.
func (p *Problem) expandPatterns() error {
	patternIndex := make(map[string]*entity.Pattern, len(p.Patterns))
	for i := range p.Patterns {
		patternIndex[p.Patterns[i].PatternID] = &p.Patterns[i]
	}

	for _, inst := range p.Instances {
		pat, ok := patternIndex[inst.PatternID]
		if !ok {
			return scherr.New(scherr.InvalidProblem, "instance references unknown pattern_id", inst.InstanceID, inst.PatternID)
		}
		for _, pt := range pat.PatternTasks {
			expanded := pt
			expanded.TaskID = entity.InstanceTaskID(inst.InstanceID, pt.TaskID)
			expanded.JobID = inst.InstanceID
			p.Tasks = append(p.Tasks, expanded)
		}
		job := entity.Job{JobID: inst.InstanceID, Description: inst.Description, DueDate: inst.DueDate}
		for _, pt := range pat.PatternTasks {
			job.TaskIDs = append(job.TaskIDs, entity.InstanceTaskID(inst.InstanceID, pt.TaskID))
		}
		p.Jobs = append(p.Jobs, job)

		for _, prec := range pat.Precedences {
			p.expandedPrecedences = append(p.expandedPrecedences, entity.Precedence{
				PredTaskID: entity.InstanceTaskID(inst.InstanceID, prec.PredTaskID),
				SuccTaskID: entity.InstanceTaskID(inst.InstanceID, prec.SuccTaskID),
			})
		}
	}
	return nil
}

func rebuildPrecedenceLinks(p *Problem) {
	for i := range p.Tasks {
		p.Tasks[i].PrecedenceSuccessors = nil
		p.Tasks[i].PrecedencePredecessors = nil
	}
	for _, prec := range p.AllPrecedences() {
		if pred, ok := p.TaskIndex[prec.PredTaskID]; ok {
			pred.PrecedenceSuccessors = append(pred.PrecedenceSuccessors, prec.SuccTaskID)
		}
		if succ, ok := p.TaskIndex[prec.SuccTaskID]; ok {
			succ.PrecedencePredecessors = append(succ.PrecedencePredecessors, prec.PredTaskID)
		}
	}
}

// AllPrecedences returns the unique-job precedence list plus any
// pattern-derived precedences expanded during Assemble.
func (p *Problem) AllPrecedences() []entity.Precedence {
	return p.expandedPrecedences
}

// Validate checks the assembled Problem for structural integrity:
// missing machines in modes, dangling precedences, empty modes, and
// pattern cycles. It accumulates every issue via scherr.List instead
// of stopping at the first.
func (p *Problem) Validate() error {
	issues := scherr.NewList(scherr.InvalidProblem)

	for _, t := range p.Tasks {
		if len(t.Modes) == 0 {
			issues.Add("task %s has no modes", t.TaskID)
			continue
		}
		for _, m := range t.Modes {
			if _, ok := p.MachineIndex[m.MachineResourceID]; !ok {
				issues.Add("task %s mode %s references unknown machine %s", t.TaskID, m.ModeID, m.MachineResourceID)
			}
		}
	}

	for _, prec := range p.AllPrecedences() {
		if _, ok := p.TaskIndex[prec.PredTaskID]; !ok {
			issues.Add("precedence references unknown pred task %s", prec.PredTaskID)
		}
		if _, ok := p.TaskIndex[prec.SuccTaskID]; !ok {
			issues.Add("precedence references unknown succ task %s", prec.SuccTaskID)
		}
	}

	if cyc := p.findPrecedenceCycle(); cyc != "" {
		issues.Add("precedence graph contains a cycle reachable from task %s", cyc)
	}

	for _, req := range p.TaskSkillReqs {
		if _, ok := p.TaskIndex[req.TaskID]; !ok {
			issues.Add("task skill requirement references unknown task %s", req.TaskID)
		}
		if _, ok := p.SkillIndex[req.SkillID]; !ok {
			issues.Add("task skill requirement references unknown skill %s", req.SkillID)
		}
	}

	return issues.Build()
}

// findPrecedenceCycle returns the ID of a task reachable from a cycle,
// or "" if the precedence graph is acyclic.
func (p *Problem) findPrecedenceCycle() string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(p.TaskIndex))

	var visit func(taskID string) bool
	visit = func(taskID string) bool {
		switch state[taskID] {
		case visiting:
			return true
		case done:
			return false
		}
		state[taskID] = visiting
		if t, ok := p.TaskIndex[taskID]; ok {
			for _, succ := range t.PrecedenceSuccessors {
				if visit(succ) {
					return true
				}
			}
		}
		state[taskID] = done
		return false
	}

	for taskID := range p.TaskIndex {
		if state[taskID] == unvisited && visit(taskID) {
			return taskID
		}
	}
	return ""
}

// Task looks up a task by its (possibly pattern-expanded) ID.
func (p *Problem) Task(taskID string) (*entity.Task, error) {
	t, ok := p.TaskIndex[taskID]
	if !ok {
		return nil, scherr.New(scherr.InvalidProblem, fmt.Sprintf("unknown task_id %q", taskID))
	}
	return t, nil
}
