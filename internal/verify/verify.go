// Package verify re-checks an already-extracted schedule against the
// problem it was solved for, independent of the solver that produced
// it. Every function here is pure: given a Problem and a Schedule, it
// reports violations without touching cpengine or re-solving anything,
// so external callers can audit a schedule they received from
// elsewhere.
package verify

import (
	"fmt"
	"sort"
	"time"

	"github.com/gitrdm/scheduled/internal/entity"
	"github.com/gitrdm/scheduled/internal/extract"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// Violation is one broken invariant, numbered per the universal
// invariant list.
type Violation struct {
	Invariant int
	Message   string
}

func (v Violation) String() string {
	return fmt.Sprintf("invariant %d: %s", v.Invariant, v.Message)
}

// CheckAll runs every invariant check and returns their combined
// violations. An empty result means the schedule is consistent.
func CheckAll(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	out = append(out, CheckDurationBounds(p, sched)...)
	out = append(out, CheckMachineAssignment(p, sched)...)
	out = append(out, CheckPrecedence(p, sched)...)
	out = append(out, CheckMachineCapacity(p, sched)...)
	out = append(out, CheckWorkCellCapacity(p, sched)...)
	out = append(out, CheckSetupTimes(p, sched)...)
	out = append(out, CheckUnattendedWindows(p, sched)...)
	out = append(out, CheckOperatorCoverage(p, sched)...)
	out = append(out, CheckShiftFit(p, sched)...)
	out = append(out, CheckWIPLimits(p, sched)...)
	out = append(out, CheckPatternSymmetry(p, sched)...)
	return out
}

func entryFor(sched *extract.Schedule) map[string]extract.ScheduleEntry {
	m := make(map[string]extract.ScheduleEntry, len(sched.Entries))
	for _, e := range sched.Entries {
		m[e.TaskID] = e
	}
	return m
}

// CheckDurationBounds is invariant 1: start+duration=end (implied by
// entry shape) and duration within [min_dur, max_dur] across the
// task's modes.
func CheckDurationBounds(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	for _, e := range sched.Entries {
		task, err := p.Task(e.TaskID)
		if err != nil {
			out = append(out, Violation{1, fmt.Sprintf("task %s not found in problem", e.TaskID)})
			continue
		}
		if e.End < e.Start {
			out = append(out, Violation{1, fmt.Sprintf("task %s end %d precedes start %d", e.TaskID, e.End, e.Start)})
			continue
		}
		dur := e.End - e.Start
		minDur := timeutil.ToTU(task.MinDurationMinutes())
		maxDur := timeutil.ToTU(task.MaxDurationMinutes())
		if dur < minDur || dur > maxDur {
			out = append(out, Violation{1, fmt.Sprintf("task %s duration %d outside [%d,%d]", e.TaskID, dur, minDur, maxDur)})
		}
	}
	return out
}

// CheckMachineAssignment is invariant 2: exactly one machine chosen
// (the extracted entry already carries a single MachineID), and its
// mode's TU duration matches the entry's duration.
func CheckMachineAssignment(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	for _, e := range sched.Entries {
		task, err := p.Task(e.TaskID)
		if err != nil {
			continue
		}
		if e.MachineID == "" {
			out = append(out, Violation{2, fmt.Sprintf("task %s has no machine assigned", e.TaskID)})
			continue
		}
		mode, ok := task.ModeFor(e.MachineID)
		if !ok {
			out = append(out, Violation{2, fmt.Sprintf("task %s assigned to ineligible machine %s", e.TaskID, e.MachineID)})
			continue
		}
		if got, want := e.End-e.Start, timeutil.ToTU(mode.DurationMinutes); got != want {
			out = append(out, Violation{2, fmt.Sprintf("task %s duration %d does not match mode %s duration %d", e.TaskID, got, e.MachineID, want)})
		}
	}
	return out
}

// CheckPrecedence is invariant 3: end_P <= start_S for every
// precedence edge.
func CheckPrecedence(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	byTask := entryFor(sched)
	for _, pr := range p.AllPrecedences() {
		pred, okP := byTask[pr.PredTaskID]
		succ, okS := byTask[pr.SuccTaskID]
		if !okP || !okS {
			continue
		}
		if pred.End > succ.Start {
			out = append(out, Violation{3, fmt.Sprintf("precedence %s->%s violated: end %d > start %d", pr.PredTaskID, pr.SuccTaskID, pred.End, succ.Start)})
		}
	}
	return out
}

type interval struct {
	start, end timeutil.TU
	taskID     string
}

func overlapCount(intervals []interval, at timeutil.TU) int {
	count := 0
	for _, iv := range intervals {
		if iv.start <= at && at < iv.end {
			count++
		}
	}
	return count
}

// maxConcurrent returns the largest number of intervals simultaneously
// active, sampling at every interval start (the count can only rise
// at a start).
func maxConcurrent(intervals []interval) int {
	if len(intervals) == 0 {
		return 0
	}
	points := make([]timeutil.TU, 0, len(intervals))
	for _, iv := range intervals {
		points = append(points, iv.start)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	max := 0
	for _, pt := range points {
		if c := overlapCount(intervals, pt); c > max {
			max = c
		}
	}
	return max
}

// CheckMachineCapacity is invariant 4.
func CheckMachineCapacity(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	byMachine := make(map[string][]interval)
	for _, e := range sched.Entries {
		if e.MachineID == "" {
			continue
		}
		byMachine[e.MachineID] = append(byMachine[e.MachineID], interval{e.Start, e.End, e.TaskID})
	}
	for _, m := range p.Machines {
		cap := m.Capacity
		if cap < 1 {
			cap = 1
		}
		if got := maxConcurrent(byMachine[m.ResourceID]); got > cap {
			out = append(out, Violation{4, fmt.Sprintf("machine %s has %d concurrent tasks, capacity %d", m.ResourceID, got, cap)})
		}
	}
	return out
}

// CheckWorkCellCapacity is invariant 5.
func CheckWorkCellCapacity(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	for _, cell := range p.WorkCells {
		if cell.Capacity >= len(cell.Machines) {
			continue
		}
		machineSet := make(map[string]bool, len(cell.Machines))
		for _, m := range cell.Machines {
			machineSet[m] = true
		}
		var intervals []interval
		for _, e := range sched.Entries {
			if machineSet[e.MachineID] {
				intervals = append(intervals, interval{e.Start, e.End, e.TaskID})
			}
		}
		if got := maxConcurrent(intervals); got > cell.Capacity {
			out = append(out, Violation{5, fmt.Sprintf("work cell %s has %d concurrent tasks, capacity %d", cell.CellID, got, cell.Capacity)})
		}
	}
	return out
}

// CheckSetupTimes is invariant 6: every realized setup transition's
// gap is honored by the two tasks' actual start/end times.
func CheckSetupTimes(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	byTask := entryFor(sched)
	for _, s := range sched.Setups {
		from, okF := byTask[s.FromTask]
		to, okT := byTask[s.ToTask]
		if !okF || !okT {
			continue
		}
		if to.Start < from.End+s.GapTU {
			out = append(out, Violation{6, fmt.Sprintf("setup %s->%s on %s: start %d < end %d + gap %d", s.FromTask, s.ToTask, s.MachineID, to.Start, from.End, s.GapTU)})
		}
	}
	return out
}

// CheckUnattendedWindows is invariant 7.
func CheckUnattendedWindows(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	byTask := entryFor(sched)
	setupEndByJob := make(map[string]timeutil.TU)

	for _, task := range p.Tasks {
		if !task.IsUnattended || !task.IsSetup {
			continue
		}
		e, ok := byTask[task.TaskID]
		if !ok {
			continue
		}
		// Mirrors compileUnattended's five-weekday-boolean encoding:
		// the task's calendar day (from horizon start) must be one of
		// 0..4, and both start and end must fall within that day's
		// 07:00-16:00 business-hours window.
		day, startOffset := timeutil.Weekday(e.Start)
		endDay, endOffset := timeutil.Weekday(e.End)
		if day < 0 || day >= 5 {
			out = append(out, Violation{7, fmt.Sprintf("unattended setup %s starts on day %d, outside the 5-weekday window", task.TaskID, day)})
		}
		if startOffset < timeutil.BusinessHoursStart {
			out = append(out, Violation{7, fmt.Sprintf("unattended setup %s starts before business hours", task.TaskID)})
		}
		if endDay != day || endOffset > timeutil.BusinessHoursEnd {
			out = append(out, Violation{7, fmt.Sprintf("unattended setup %s ends outside its day's business-hours window", task.TaskID)})
		}
		setupEndByJob[task.JobID] = e.End
	}

	for _, task := range p.Tasks {
		if !task.IsUnattended || task.IsSetup {
			continue
		}
		e, ok := byTask[task.TaskID]
		if !ok {
			continue
		}
		setupEnd, ok := setupEndByJob[task.JobID]
		if !ok {
			continue
		}
		if e.Start < setupEnd {
			out = append(out, Violation{7, fmt.Sprintf("unattended execution %s starts before its setup ends", task.TaskID)})
		}
	}
	return out
}

// CheckOperatorCoverage is invariant 8.
func CheckOperatorCoverage(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	byTask := entryFor(sched)
	for _, task := range p.Tasks {
		// A problem without operators gets no operator-assignment
		// variables and no headcount constraint, so there is nothing
		// to check.
		if task.MinOperators == 0 || len(p.Operators) == 0 {
			continue
		}
		e, ok := byTask[task.TaskID]
		if !ok {
			continue
		}
		n := len(e.OperatorIDs)
		if n < task.MinOperators || n > task.MaxOperators {
			out = append(out, Violation{8, fmt.Sprintf("task %s has %d operators, want [%d,%d]", task.TaskID, n, task.MinOperators, task.MaxOperators)})
		}
		for _, req := range p.TaskSkillReqIndex[task.TaskID] {
			if !req.IsMandatory {
				continue
			}
			qualified := 0
			for _, opID := range e.OperatorIDs {
				op, ok := p.OperatorIndex[opID]
				if ok && op.HasSkillAtLeast(req.SkillID, req.RequiredLevel) {
					qualified++
				}
			}
			needed := req.OperatorsNeeded
			if needed < 1 {
				needed = 1
			}
			if qualified < needed {
				out = append(out, Violation{8, fmt.Sprintf("task %s skill %s has %d qualified assignees, need %d", task.TaskID, req.SkillID, qualified, needed)})
			}
		}
	}
	return out
}

// CheckShiftFit is invariant 9.
func CheckShiftFit(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	byTask := entryFor(sched)
	shiftsByOp := make(map[string][]entity.OperatorShift)
	for _, s := range p.Shifts {
		if s.IsAvailable {
			shiftsByOp[s.OperatorID] = append(shiftsByOp[s.OperatorID], s)
		}
	}

	for _, task := range p.Tasks {
		e, ok := byTask[task.TaskID]
		if !ok || len(e.OperatorIDs) == 0 {
			continue
		}
		for _, opID := range e.OperatorIDs {
			if !fitsSomeShift(e.Start, e.End, shiftsByOp[opID]) {
				out = append(out, Violation{9, fmt.Sprintf("task %s operator %s does not fit any available shift", task.TaskID, opID)})
			}
		}
	}
	return out
}

func fitsSomeShift(start, end timeutil.TU, shifts []entity.OperatorShift) bool {
	for _, s := range shifts {
		date, err := time.Parse("2006-01-02", s.ShiftDate)
		if err != nil {
			continue
		}
		dayBase := timeutil.ToTU(int(date.Sub(timeutil.Epoch).Minutes()))
		lo := dayBase + timeutil.TU(s.StartTU)
		hi := dayBase + timeutil.TU(s.EndTU)
		if start >= lo && end <= hi {
			return true
		}
	}
	return len(shifts) == 0 // no recorded shifts means the check is vacuous here
}

// CheckWIPLimits is invariant 10.
func CheckWIPLimits(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	for _, cell := range p.WorkCells {
		if cell.Unlimited() {
			continue
		}
		machineSet := make(map[string]bool, len(cell.Machines))
		for _, m := range cell.Machines {
			machineSet[m] = true
		}
		var intervals []interval
		for _, e := range sched.Entries {
			if machineSet[e.MachineID] {
				intervals = append(intervals, interval{e.Start, e.End, e.TaskID})
			}
		}
		if got := maxConcurrent(intervals); got > cell.EffectiveWIPLimit() {
			out = append(out, Violation{10, fmt.Sprintf("work cell %s WIP %d exceeds limit %d", cell.CellID, got, cell.EffectiveWIPLimit())})
		}
	}
	return out
}

// CheckPatternSymmetry is invariant 11.
func CheckPatternSymmetry(p *problem.Problem, sched *extract.Schedule) []Violation {
	var out []Violation
	if !p.IsPatternMode {
		return out
	}
	byTask := entryFor(sched)

	byPattern := make(map[string][]entity.Instance)
	for _, inst := range p.Instances {
		byPattern[inst.PatternID] = append(byPattern[inst.PatternID], inst)
	}

	for _, pattern := range p.Patterns {
		instances := byPattern[pattern.PatternID]
		if len(instances) < 2 {
			continue
		}
		sort.Slice(instances, func(i, j int) bool { return instances[i].InstanceID < instances[j].InstanceID })
		for _, pt := range pattern.PatternTasks {
			for i := 0; i+1 < len(instances); i++ {
				a, okA := byTask[entity.InstanceTaskID(instances[i].InstanceID, pt.TaskID)]
				b, okB := byTask[entity.InstanceTaskID(instances[i+1].InstanceID, pt.TaskID)]
				if !okA || !okB {
					continue
				}
				if a.Start > b.Start {
					out = append(out, Violation{11, fmt.Sprintf("pattern %s task %s: instance %s starts after %s", pattern.PatternID, pt.TaskID, instances[i].InstanceID, instances[i+1].InstanceID)})
				}
			}
		}
	}
	return out
}
