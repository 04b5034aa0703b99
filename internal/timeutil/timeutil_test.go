package timeutil

import "testing"

func TestToTU_RoundsUp(t *testing.T) {
	cases := map[int]TU{
		0:  0,
		1:  1,
		14: 1,
		15: 1,
		16: 2,
		30: 2,
		45: 3,
	}
	for minutes, want := range cases {
		if got := ToTU(minutes); got != want {
			t.Fatalf("ToTU(%d) = %d, want %d", minutes, got, want)
		}
	}
}

func TestClampDueTU(t *testing.T) {
	if got := ClampDueTU(-5); got != 1 {
		t.Fatalf("ClampDueTU(-5) = %d, want 1", got)
	}
	if got := ClampDueTU(0); got != 1 {
		t.Fatalf("ClampDueTU(0) = %d, want 1", got)
	}
	if got := ClampDueTU(42); got != 42 {
		t.Fatalf("ClampDueTU(42) = %d, want 42", got)
	}
}

func TestHorizon_MinimumFloor(t *testing.T) {
	if got := Horizon(0, 0); got != 100 {
		t.Fatalf("Horizon(0,0) = %d, want 100 (floor)", got)
	}
}

func TestHorizon_ScalesWithWork(t *testing.T) {
	// workTU=200 -> 2*workTU=400 -> *1.2 = 480
	got := Horizon(0, 200)
	if got != 480 {
		t.Fatalf("Horizon(0,200) = %d, want 480", got)
	}
}

func TestDomainValueRoundTrip(t *testing.T) {
	for tu := TU(0); tu < 200; tu++ {
		if got := FromDomainValue(DomainValue(tu)); got != tu {
			t.Fatalf("round trip failed for TU %d: got %d", tu, got)
		}
	}
}

func TestDomainValue_NeverZero(t *testing.T) {
	if DomainValue(0) != 1 {
		t.Fatalf("DomainValue(0) = %d, want 1 (engine domains are 1-indexed)", DomainValue(0))
	}
}

func TestClip(t *testing.T) {
	if got := Clip(5, 10, 20); got != 10 {
		t.Fatalf("Clip(5,10,20) = %d, want 10", got)
	}
	if got := Clip(25, 10, 20); got != 20 {
		t.Fatalf("Clip(25,10,20) = %d, want 20", got)
	}
	if got := Clip(15, 10, 20); got != 15 {
		t.Fatalf("Clip(15,10,20) = %d, want 15", got)
	}
}

func TestWeekday(t *testing.T) {
	day, offset := Weekday(BusinessHoursStart + PerDay)
	if day != 1 || offset != BusinessHoursStart {
		t.Fatalf("Weekday(96+28) = (%d,%d), want (1,28)", day, offset)
	}
}
