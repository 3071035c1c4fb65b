package passes

import (
	"testing"
	"time"
)

var kyiv = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		panic(err)
	}
	return loc
}()

func TestComputeWindowStartNow(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 30, 0, 0, kyiv)

	from, until, err := ComputeWindow(DateToday, StartNow, Duration2h, now, kyiv)
	if err != nil {
		t.Fatalf("ComputeWindow: %v", err)
	}
	if !from.Equal(now) {
		t.Errorf("from = %v, want %v", from, now)
	}
	if !until.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("until = %v, want %v", until, now.Add(2*time.Hour))
	}
}

func TestComputeWindowNamedStarts(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, kyiv)

	tests := []struct {
		dateSel  string
		startSel string
		wantDay  int
		wantHour int
	}{
		{DateToday, StartMorning, 10, 8},
		{DateTomorrow, StartAfternoon, 11, 12},
		{DateDayAfter, StartEvening, 12, 17},
	}
	for _, tt := range tests {
		from, until, err := ComputeWindow(tt.dateSel, tt.startSel, Duration4h, now, kyiv)
		if err != nil {
			t.Fatalf("ComputeWindow(%s, %s): %v", tt.dateSel, tt.startSel, err)
		}
		if from.Day() != tt.wantDay || from.Hour() != tt.wantHour {
			t.Errorf("%s/%s: from = %v, want day %d hour %d",
				tt.dateSel, tt.startSel, from, tt.wantDay, tt.wantHour)
		}
		if got := until.Sub(from); got != 4*time.Hour {
			t.Errorf("%s/%s: window length = %v", tt.dateSel, tt.startSel, got)
		}
	}
}

func TestComputeWindowAllDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, kyiv)

	from, until, err := ComputeWindow(DateTomorrow, StartMorning, DurationAllDay, now, kyiv)
	if err != nil {
		t.Fatalf("ComputeWindow: %v", err)
	}
	if from.Hour() != 7 || from.Day() != 11 {
		t.Errorf("from = %v, want 07:00 tomorrow", from)
	}
	if until.Hour() != 23 || until.Day() != 11 {
		t.Errorf("until = %v, want 23:00 tomorrow", until)
	}

	// The chosen start does not move an all-day window.
	from2, until2, err := ComputeWindow(DateTomorrow, StartEvening, DurationAllDay, now, kyiv)
	if err != nil {
		t.Fatalf("ComputeWindow: %v", err)
	}
	if !from2.Equal(from) || !until2.Equal(until) {
		t.Errorf("all-day window moved with start: %v .. %v", from2, until2)
	}
}

func TestComputeWindowRejectsNowOnFutureDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, kyiv)

	if _, _, err := ComputeWindow(DateTomorrow, StartNow, Duration1h, now, kyiv); err == nil {
		t.Error("expected error: start now with a future visit date")
	}
}

func TestComputeWindowRejectsUnknownSelections(t *testing.T) {
	now := time.Now()

	if _, _, err := ComputeWindow("next_week", StartMorning, Duration1h, now, kyiv); err == nil {
		t.Error("expected error for unknown date")
	}
	if _, _, err := ComputeWindow(DateToday, "midnight", Duration1h, now, kyiv); err == nil {
		t.Error("expected error for unknown start")
	}
	if _, _, err := ComputeWindow(DateToday, StartMorning, "3h", now, kyiv); err == nil {
		t.Error("expected error for unknown duration")
	}
}

func TestSingleUse(t *testing.T) {
	tests := []struct {
		visitorType string
		duration    string
		want        bool
	}{
		{"delivery", Duration8h, true},
		{"contractor", DurationAllDay, true},
		{"guest", Duration1h, true},
		{"guest", Duration2h, true},
		{"guest", Duration4h, false},
		{"service", DurationAllDay, false},
		{"other", Duration8h, false},
	}
	for _, tt := range tests {
		if got := SingleUse(tt.visitorType, tt.duration); got != tt.want {
			t.Errorf("SingleUse(%q, %q) = %v, want %v", tt.visitorType, tt.duration, got, tt.want)
		}
	}
}

func TestDurationsForType(t *testing.T) {
	if got := DurationsForType("delivery"); len(got) != 2 || got[1] != Duration2h {
		t.Errorf("delivery durations = %v", got)
	}
	if got := DurationsForType("contractor"); got[len(got)-1] != DurationAllDay {
		t.Errorf("contractor durations = %v", got)
	}
	if got := DurationsForType("guest"); len(got) != 4 {
		t.Errorf("guest durations = %v", got)
	}
}
