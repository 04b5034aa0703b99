// Package entity defines the typed, immutable-after-construction records
// that make up a scheduling problem: machines, work cells, tasks, jobs,
// patterns, instances, operators, skills, and shifts.
package entity

import "github.com/gitrdm/scheduled/internal/scherr"

// Machine is one schedulable resource. Capacity=k means up to k tasks may
// run on it concurrently.
type Machine struct {
	ResourceID  string
	CellID      string
	Name        string
	Capacity    int
	CostPerHour float64
}

// NewMachine validates and constructs a Machine.
func NewMachine(resourceID, cellID, name string, capacity int, costPerHour float64) (*Machine, error) {
	if resourceID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "machine resource_id must not be empty")
	}
	if capacity < 0 {
		return nil, scherr.New(scherr.InvalidEntity, "machine capacity must be >= 0", resourceID)
	}
	if costPerHour < 0 {
		return nil, scherr.New(scherr.InvalidEntity, "machine cost_per_hour must be >= 0", resourceID)
	}
	return &Machine{
		ResourceID:  resourceID,
		CellID:      cellID,
		Name:        name,
		Capacity:    capacity,
		CostPerHour: costPerHour,
	}, nil
}

// WorkCell groups machines under a shared capacity and WIP limit.
type WorkCell struct {
	CellID            string
	Name              string
	Capacity          int
	WIPLimit          int // 0 means "use Capacity"; >=100 means unlimited
	TargetUtilization float64
	FlowPriority      int
	Machines          []string // resource_ids
}

// NewWorkCell validates and constructs a WorkCell.
func NewWorkCell(cellID, name string, capacity int, wipLimit int, targetUtilization float64, flowPriority int, machines []string) (*WorkCell, error) {
	if cellID == "" {
		return nil, scherr.New(scherr.InvalidEntity, "work cell cell_id must not be empty")
	}
	if capacity < 1 {
		return nil, scherr.New(scherr.InvalidEntity, "work cell capacity must be >= 1", cellID)
	}
	if targetUtilization < 0 || targetUtilization > 1 {
		return nil, scherr.New(scherr.InvalidEntity, "work cell target_utilization must be in [0,1]", cellID)
	}
	if flowPriority < 1 {
		return nil, scherr.New(scherr.InvalidEntity, "work cell flow_priority must be >= 1", cellID)
	}
	return &WorkCell{
		CellID:            cellID,
		Name:              name,
		Capacity:          capacity,
		WIPLimit:          wipLimit,
		TargetUtilization: targetUtilization,
		FlowPriority:      flowPriority,
		Machines:          machines,
	}, nil
}

// EffectiveWIPLimit returns the cell's WIP limit, treating a zero value
// as "use capacity" and values >= 100 as unlimited (sentinel per §4.5.8).
func (c *WorkCell) EffectiveWIPLimit() int {
	if c.WIPLimit <= 0 {
		return c.Capacity
	}
	return c.WIPLimit
}

// Unlimited reports whether the cell's effective WIP limit is the
// "unlimited" sentinel.
func (c *WorkCell) Unlimited() bool {
	return c.EffectiveWIPLimit() >= 100
}
