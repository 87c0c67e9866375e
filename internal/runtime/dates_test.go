package runtime

import "testing"

func TestAddDaysAcrossMonthBoundary(t *testing.T) {
	got := AddDays(Date{2024, 3, 30}, 3)
	if got != (Date{2024, 4, 2}) {
		t.Fatalf("2024-03-30 + 3 = %+v", got)
	}
}

func TestLeapYearBoundary(t *testing.T) {
	d := Date{2024, 2, 28}
	d = AddDays(d, 1)
	if d != (Date{2024, 2, 29}) {
		t.Fatalf("leap day: %+v", d)
	}
	d = AddDays(d, 1)
	if d != (Date{2024, 3, 1}) {
		t.Fatalf("after leap day: %+v", d)
	}

	// 2023 is not a leap year; 1900 is not (divisible by 100); 2000
	// is (divisible by 400).
	if AddDays(Date{2023, 2, 28}, 1) != (Date{2023, 3, 1}) {
		t.Error("2023-02-28 + 1")
	}
	if AddDays(Date{1900, 2, 28}, 1) != (Date{1900, 3, 1}) {
		t.Error("1900-02-28 + 1")
	}
	if AddDays(Date{2000, 2, 28}, 1) != (Date{2000, 2, 29}) {
		t.Error("2000-02-28 + 1")
	}
}

func TestNextPreviousRoundTrip(t *testing.T) {
	dates := []Date{
		{2024, 1, 1},
		{2024, 2, 29},
		{2024, 12, 31},
		{1999, 12, 31},
		{2000, 2, 28},
		{1, 1, 1},
	}
	for _, d := range dates {
		if got := PreviousDay(NextDay(d)); got != d {
			t.Errorf("%+v: next.previous = %+v", d, got)
		}
	}
}

func TestAddDaysInverse(t *testing.T) {
	for _, d := range []Date{{2024, 3, 30}, {2023, 1, 1}, {2000, 2, 29}} {
		for _, n := range []int{1, 30, 365, 1461, 146097} {
			if got := AddDays(AddDays(d, n), -n); got != d {
				t.Errorf("%+v +%d -%d = %+v", d, n, n, got)
			}
		}
	}
}

func TestCivilConversionRoundTrip(t *testing.T) {
	for z := -1000; z <= 1000; z += 7 {
		d := civilFromDays(z)
		if back := daysFromCivil(d); back != z {
			t.Fatalf("day %d -> %+v -> %d", z, d, back)
		}
		if d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
			t.Fatalf("day %d produced invalid date %+v", z, d)
		}
	}
	if civilFromDays(0) != (Date{1970, 1, 1}) {
		t.Fatal("epoch mismatch")
	}
}
