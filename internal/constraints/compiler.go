// Package constraints compiles a Problem's variable set (internal/varbuild)
// into cpengine constraints, one file per family per the component design.
// Families are independent: each reads only the variables varbuild already
// created plus whatever auxiliary variables it creates for itself.
package constraints

import (
	"github.com/hashicorp/go-hclog"

	cpengine "github.com/gitrdm/gokanlogic/pkg/minikanren"
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
	"github.com/gitrdm/scheduled/internal/varbuild"
)

// Compiler posts constraint families onto a variable Build for one
// Problem. Families are applied in the order CompileAll calls them;
// each is independent and safe to skip if the corresponding feature
// is absent from the problem (e.g. no operators, no setup times).
type Compiler struct {
	Problem *problem.Problem
	Build   *varbuild.Build
	Model   *cpengine.Model
	log     hclog.Logger

	// SetupTimes maps (from_task, to_task, machine) -> TU gap. Absent
	// entries and zero values both mean "no setup time required".
	SetupTimes map[SetupKey]timeutil.TU

	// EnableDueDateHardConstraint, when true, posts completion_J <=
	// due_tu(d) as a hard bound in addition to the lateness variables
	// §4.5.9 always creates.
	EnableDueDateHardConstraint bool

	setupFollowsBool map[SetupKey]*cpengine.FDVariable
}

// SetupKey identifies one (from_task, to_task, machine) setup-time entry.
type SetupKey struct {
	From, To, Machine string
}

// SetupBool identifies, for extraction, one immediately_follows
// boolean's variable ID and the TU gap it guards.
type SetupBool struct {
	VarID int
	GapTU timeutil.TU
}

// SetupBools exposes the immediately_follows booleans compileSetupTimes
// built, keyed the same way SetupTimes was, for internal/extract to
// read back which setup transitions the solver actually chose.
func (c *Compiler) SetupBools() map[SetupKey]SetupBool {
	out := make(map[SetupKey]SetupBool, len(c.setupFollowsBool))
	for key, fd := range c.setupFollowsBool {
		out[key] = SetupBool{VarID: fd.ID(), GapTU: c.SetupTimes[key]}
	}
	return out
}

// New creates a Compiler over an already-built variable set.
func New(p *problem.Problem, b *varbuild.Build, log hclog.Logger) *Compiler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Compiler{
		Problem:    p,
		Build:      b,
		Model:      b.Model,
		log:        log.Named("compiler"),
		SetupTimes: make(map[SetupKey]timeutil.TU),
		setupFollowsBool: make(map[SetupKey]*cpengine.FDVariable),
	}
}

// Result carries the auxiliary variables later pipeline stages (the
// objective builder, in particular) need to reference by name rather
// than rediscovering them.
type Result struct {
	Lateness   map[string]varbuild.TUVar // job_id -> lateness_J
	Completion map[string]varbuild.TUVar // job_id -> completion_J
	// TotalLateness is a raw LinearSum total over NumLatenessTerms
	// lateness_J domain values, each itself TU+1-offset: subtract
	// NumLatenessTerms from its bound value to recover the TU sum.
	TotalLateness      *cpengine.FDVariable
	NumLatenessTerms    int
	MaxLateness         varbuild.TUVar
	Efficiency          map[string]*cpengine.FDVariable // task_id -> efficiency_T (raw score, not TU space)
	CellWIPMax          *cpengine.FDVariable            // raw load count, not TU space
	CellWIPMin          *cpengine.FDVariable
	Makespan            varbuild.TUVar
}

// CompileAll posts every constraint family in component-design order
// and returns the auxiliary variables needed by the objective builder.
func (c *Compiler) CompileAll() (*Result, error) {
	if err := c.compileDuration(); err != nil {
		return nil, err
	}
	if err := c.compilePrecedence(); err != nil {
		return nil, err
	}
	if err := c.compileAssignment(); err != nil {
		return nil, err
	}
	if err := c.compileMachineCapacity(); err != nil {
		return nil, err
	}
	if err := c.compileWorkCellCapacity(); err != nil {
		return nil, err
	}
	if err := c.compileUnattended(); err != nil {
		return nil, err
	}
	if err := c.compileSetupTimes(); err != nil {
		return nil, err
	}
	wipVars, err := c.compileWIPLimits()
	if err != nil {
		return nil, err
	}
	dueDates, err := c.compileDueDates()
	if err != nil {
		return nil, err
	}
	efficiency, err := c.compileSkills()
	if err != nil {
		return nil, err
	}
	if err := c.compileShifts(); err != nil {
		return nil, err
	}
	if err := c.compileSymmetryBreaking(); err != nil {
		return nil, err
	}
	makespan, err := c.compileRedundantBounds()
	if err != nil {
		return nil, err
	}

	return &Result{
		Lateness:         dueDates.lateness,
		Completion:       dueDates.completion,
		TotalLateness:    dueDates.totalLateness,
		NumLatenessTerms: dueDates.numLatenessTerms,
		MaxLateness:      dueDates.maxLateness,
		Efficiency:       efficiency,
		CellWIPMax:       wipVars.max,
		CellWIPMin:       wipVars.min,
		Makespan:         makespan,
	}, nil
}
