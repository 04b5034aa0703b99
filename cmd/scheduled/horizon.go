package main

import (
	"github.com/gitrdm/scheduled/internal/problem"
	"github.com/gitrdm/scheduled/internal/timeutil"
)

// computeHorizon derives the scheduling horizon from the latest job
// due date and the total minimum-mode work present in p, per
// timeutil.Horizon. Jobs without a due date don't contribute to
// latestDue; a problem with no due dates at all still gets a horizon
// sized off total work.
func computeHorizon(p *problem.Problem) timeutil.TU {
	var latestDue timeutil.TU
	for _, j := range p.Jobs {
		if j.DueDate == nil {
			continue
		}
		due := timeutil.FromTime(*j.DueDate)
		if due > latestDue {
			latestDue = due
		}
	}
	for _, inst := range p.Instances {
		if inst.DueDate == nil {
			continue
		}
		due := timeutil.FromTime(*inst.DueDate)
		if due > latestDue {
			latestDue = due
		}
	}

	var workTU timeutil.TU
	for _, t := range p.Tasks {
		workTU += timeutil.ToTU(t.MinDurationMinutes())
	}

	return timeutil.Horizon(latestDue, workTU)
}

// latestStartFor is the trivial latest-start policy this CLI uses:
// every task may start as late as the horizon allows. internal/varbuild
// only needs a tighter bound for propagation efficiency, never for
// correctness, so a constant horizon is a sound (if looser) choice.
func latestStartFor(horizon timeutil.TU) func(string) timeutil.TU {
	return func(string) timeutil.TU { return horizon }
}
