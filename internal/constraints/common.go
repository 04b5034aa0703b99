package constraints

import "github.com/gitrdm/scheduled/internal/timeutil"

// tuOf converts a duration in minutes to a plain TU count, for use as
// a cpengine Cumulative/NoOverlap duration argument (those take plain
// ints, not FDVariables).
func tuOf(minutes int) timeutil.TU {
	return timeutil.ToTU(minutes)
}
