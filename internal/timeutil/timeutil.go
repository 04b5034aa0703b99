// Package timeutil converts between wall-clock time and the 15-minute
// time unit ("TU") the scheduling core operates in, and owns the
// TU-to-domain-value offset needed because the underlying finite-domain
// engine's BitSetDomain is 1-indexed (it cannot represent the value 0).
package timeutil

import "time"

// TU is a count of 15-minute time units.
type TU int

// PerDay is the number of TU in one calendar day.
const PerDay TU = 96

// BusinessHoursStart and BusinessHoursEnd bound the weekday 07:00-16:00
// window used by unattended setup-task scheduling (§4.5.6).
const (
	BusinessHoursStart TU = 28
	BusinessHoursEnd   TU = 68
)

// Epoch is the reference instant TU 0 represents. The reference
// implementation fixes this at 2024-01-01T00:00:00 UTC so that due-date
// conversion and schedule datetime output always agree.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// ToTU converts a duration in minutes to TU, rounding up:
// to_tu(min) := ceil(min/15).
func ToTU(minutes int) TU {
	if minutes <= 0 {
		return 0
	}
	return TU((minutes + 14) / 15)
}

// Minutes converts a TU value back to minutes.
func (t TU) Minutes() int {
	return int(t) * 15
}

// At returns the wall-clock instant corresponding to t TU after Epoch.
func (t TU) At() time.Time {
	return Epoch.Add(time.Duration(t) * 15 * time.Minute)
}

// FromTime converts a wall-clock instant to TU relative to Epoch. Naive
// (non-UTC) times must be reinterpreted as UTC by the caller before this
// is called, per the Job/Instance due_date invariant.
func FromTime(t time.Time) TU {
	return ToTU(int(t.UTC().Sub(Epoch).Minutes()))
}

// ClampDueTU applies the past-due clamp policy this implementation
// selects: a due date at or before TU 0 becomes TU 1, keeping the hard
// due-date constraint feasible while lateness (measured against the same
// clamped value) remains meaningful. This clamp must be applied
// everywhere a due date is turned into a TU bound, so hard-constraint
// enforcement and lateness measurement never disagree.
func ClampDueTU(due TU) TU {
	if due < 1 {
		return 1
	}
	return due
}

// Horizon computes the scheduling horizon in TU given the latest due date
// among active jobs/instances and the total minimum-mode work in TU:
// horizon := max(ceil(1.2 * max(latestDue, 2*workTU)), 100).
func Horizon(latestDue TU, workTU TU) TU {
	bound := latestDue
	if 2*workTU > bound {
		bound = 2 * workTU
	}
	scaled := TU(ceilDiv(int(bound)*12, 10))
	if scaled < 100 {
		return 100
	}
	return scaled
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

// Clip bounds v to [lo, hi]. Used for per-task latest-start computation.
func Clip(v, lo, hi TU) TU {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DomainValue converts a TU into the 1-indexed value the CP engine's
// BitSetDomain requires: domain_value := TU + 1.
func DomainValue(t TU) int {
	return int(t) + 1
}

// FromDomainValue is the inverse of DomainValue.
func FromDomainValue(v int) TU {
	return TU(v - 1)
}

// Weekday returns which zero-based weekday (0 = first day of the
// horizon) a TU value falls on, and the TU offset within that day.
func Weekday(t TU) (day int, offsetInDay TU) {
	day = int(t) / int(PerDay)
	offsetInDay = t % PerDay
	return day, offsetInDay
}
