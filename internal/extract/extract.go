// Package extract turns a bound solve.Outcome back into domain-level
// results: a chronologically ordered schedule, makespan, lateness and
// setup-time metrics, and machine-utilization figures. It owns the
// inverse of internal/varbuild's TU<->domain-value offset and of
// internal/constraints' aggregate-sum offset conventions.
package extract

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-uuid"

	"github.com/gitrdm/scheduled/internal/constraints"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

// ScheduleEntry is one task's placement in the extracted schedule.
type ScheduleEntry struct {
	TaskID      string
	JobID       string
	Start       timeutil.TU
	End         timeutil.TU
	MachineID   string
	OperatorIDs []string
}

// SetupRecord is one realized (from, to, machine) setup-time gap: an
// immediately_follows boolean the solver bound true.
type SetupRecord struct {
	ID        string
	FromTask  string
	ToTask    string
	MachineID string
	GapTU     timeutil.TU
}

// Metrics summarizes derived quantities over an extracted schedule.
type Metrics struct {
	Makespan           timeutil.TU
	TotalLatenessTU    timeutil.TU
	MaxLatenessTU      timeutil.TU
	TotalSetupTimeTU   timeutil.TU
	MachineUtilization map[string]float64 // resource_id -> busy_TU / (makespan * capacity) * 100
}

// Schedule is the fully extracted, human-consumable result of one solve.
type Schedule struct {
	Entries []ScheduleEntry
	Setups  []SetupRecord
	Metrics Metrics
}

// Extract reads a bound solution vector (indexed by FDVariable.ID(),
// as returned by cpengine.Solver.SolveOptimalWithOptions) back into a
// Schedule. compiled is the constraints.Result produced alongside the
// model the solution was found for; setupBools maps each
// compileSetupTimes SetupKey to the immediately_follows boolean the
// compiler built for it (exported for this purpose via the Compiler,
// since Result itself only carries objective-relevant variables).
func Extract(p *problem.Problem, b *varbuild.Build, compiled *constraints.Result, setupBools map[constraints.SetupKey]constraints.SetupBool, values []int) (*Schedule, error) {
	entries := make([]ScheduleEntry, 0, len(b.TaskList))
	busyTU := make(map[string]timeutil.TU)

	for _, taskID := range b.TaskList {
		task, err := p.Task(taskID)
		if err != nil {
			return nil, err
		}
		tv := b.Tasks[taskID]

		startTU := tuAt(values, tv.Start.Var.ID())
		endTU := tuAt(values, tv.End.Var.ID())

		machineID := ""
		for resID, bv := range tv.AssignedM {
			if boolAt(values, bv.Var.ID()) {
				machineID = resID
				break
			}
		}

		var operatorIDs []string
		for opID, bv := range tv.AssignedO {
			if boolAt(values, bv.Var.ID()) {
				operatorIDs = append(operatorIDs, opID)
			}
		}
		sort.Strings(operatorIDs)

		entries = append(entries, ScheduleEntry{
			TaskID:      taskID,
			JobID:       task.JobID,
			Start:       startTU,
			End:         endTU,
			MachineID:   machineID,
			OperatorIDs: operatorIDs,
		})

		if machineID != "" {
			busyTU[machineID] += endTU - startTU
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Start != entries[j].Start {
			return entries[i].Start < entries[j].Start
		}
		if entries[i].JobID != entries[j].JobID {
			return entries[i].JobID < entries[j].JobID
		}
		return entries[i].TaskID < entries[j].TaskID
	})

	setups, totalSetupTU, err := extractSetups(setupBools, values)
	if err != nil {
		return nil, err
	}

	metrics := Metrics{
		TotalSetupTimeTU:   totalSetupTU,
		MachineUtilization: make(map[string]float64),
	}

	if compiled.Makespan.Var != nil {
		metrics.Makespan = timeutil.TU(domainValueAt(values, compiled.Makespan.Var.ID()) - 1)
	}
	if compiled.TotalLateness != nil {
		raw := domainValueAt(values, compiled.TotalLateness.ID())
		metrics.TotalLatenessTU = timeutil.TU(raw - compiled.NumLatenessTerms)
	}
	if compiled.MaxLateness.Var != nil {
		metrics.MaxLatenessTU = timeutil.TU(domainValueAt(values, compiled.MaxLateness.Var.ID()) - 1)
	}

	if metrics.Makespan > 0 {
		for _, m := range p.Machines {
			capacity := m.Capacity
			if capacity < 1 {
				capacity = 1
			}
			metrics.MachineUtilization[m.ResourceID] = float64(busyTU[m.ResourceID]) / (float64(metrics.Makespan) * float64(capacity)) * 100
		}
	}

	return &Schedule{Entries: entries, Setups: setups, Metrics: metrics}, nil
}

func extractSetups(setupBools map[constraints.SetupKey]constraints.SetupBool, values []int) ([]SetupRecord, timeutil.TU, error) {
	var records []SetupRecord
	var total timeutil.TU
	for key, sb := range setupBools {
		if sb.VarID >= len(values) || values[sb.VarID] != 2 {
			continue
		}
		id, err := uuid.GenerateUUID()
		if err != nil {
			return nil, 0, fmt.Errorf("generating setup record id: %w", err)
		}
		records = append(records, SetupRecord{
			ID:        id,
			FromTask:  key.From,
			ToTask:    key.To,
			MachineID: key.Machine,
			GapTU:     sb.GapTU,
		})
		total += sb.GapTU
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].FromTask != records[j].FromTask {
			return records[i].FromTask < records[j].FromTask
		}
		return records[i].ToTask < records[j].ToTask
	})
	return records, total, nil
}

func domainValueAt(values []int, id int) int {
	if id < 0 || id >= len(values) {
		return 1
	}
	return values[id]
}

func tuAt(values []int, id int) timeutil.TU {
	return timeutil.FromDomainValue(domainValueAt(values, id))
}

func boolAt(values []int, id int) bool {
	return domainValueAt(values, id) == 2
}
