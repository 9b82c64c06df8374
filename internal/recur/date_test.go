package recur

import (
	"testing"
	"time"
)

func TestParseCivilDate_RoundTrip(t *testing.T) {
	d, err := ParseCivilDate("2024-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 2024 || d.Month != time.January || d.Day != 5 {
		t.Fatalf("unexpected date: %+v", d)
	}
	if d.String() != "2024-01-05" {
		t.Fatalf("expected 2024-01-05, got %q", d.String())
	}
}

func TestParseCivilDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "05.01.2024", "2024-01-05T00:00:00Z"} {
		if _, err := ParseCivilDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCivilDate_Weekday(t *testing.T) {
	// 2024-01-05 — пятница.
	d := NewCivilDate(2024, time.January, 5)
	if d.Weekday() != time.Friday {
		t.Fatalf("expected Friday, got %v", d.Weekday())
	}
}

func TestCivilDate_AddDays_MonthBoundary(t *testing.T) {
	d := NewCivilDate(2024, time.January, 31).AddDays(1)
	if d != NewCivilDate(2024, time.February, 1) {
		t.Fatalf("expected 2024-02-01, got %v", d)
	}

	back := d.AddDays(-1)
	if back != NewCivilDate(2024, time.January, 31) {
		t.Fatalf("expected 2024-01-31, got %v", back)
	}
}

func TestCivilDate_Ordering(t *testing.T) {
	a := NewCivilDate(2024, time.January, 5)
	b := NewCivilDate(2024, time.January, 6)

	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected a < b")
	}
	if !b.After(a) {
		t.Fatalf("expected b > a")
	}
	if !a.Equal(a) || a.Equal(b) {
		t.Fatalf("unexpected equality results")
	}
}

func TestCivilDate_At_UsesLocationOnce(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	d := NewCivilDate(2024, time.January, 5)

	got := d.At(23*60+30, kst)
	want := time.Date(2024, time.January, 5, 23, 30, 0, 0, kst)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
