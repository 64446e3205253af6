package expiration

import (
	"errors"
	"testing"
	"time"
)

func TestParseDurationClockForms(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30", 30 * time.Second},
		{"15:30", 15*time.Minute + 30*time.Second},
		{"10:15:30", 10*time.Hour + 15*time.Minute + 30*time.Second},
		{"4 10:15:30", 4*24*time.Hour + 10*time.Hour + 15*time.Minute + 30*time.Second},
		{"4 days, 10:15:30", 4*24*time.Hour + 10*time.Hour + 15*time.Minute + 30*time.Second},
		{"1 day, 0:00:01", 24*time.Hour + time.Second},
		{"30.5", 30*time.Second + 500*time.Millisecond},
		{"15:30.25", 15*time.Minute + 30*time.Second + 250*time.Millisecond},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDurationISO(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"P3DT12H30M5S", 3*24*time.Hour + 12*time.Hour + 30*time.Minute + 5*time.Second},
		{"PT1H30M", 90 * time.Minute},
		{"PT0.5S", 500 * time.Millisecond},
		{"P1D", 24 * time.Hour},
		{"-P1D", -24 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDurationUnitSums(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"1h 30m 10s", time.Hour + 30*time.Minute + 10*time.Second},
		{"10 seconds", 10 * time.Second},
		{"2 HOURS", 2 * time.Hour},
		{"1 day 12 hours", 36 * time.Hour},
		{"1 minute", time.Minute},
		{"90 min", 90 * time.Minute},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDurationErrors(t *testing.T) {
	for _, in := range []string{"", "soon", "anytime now"} {
		if _, err := ParseDuration(in); !errors.Is(err, ErrDuration) {
			t.Errorf("ParseDuration(%q) err = %v, want ErrDuration", in, err)
		}
	}

	// a digit-leading input surfaces the sum parser's exact diagnosis
	_, err := ParseDuration("5 parsecs")
	var exprErr *InvalidExpressionError
	if !errors.As(err, &exprErr) {
		t.Fatalf("err = %v, want InvalidExpressionError", err)
	}
	if exprErr.Position != 2 {
		t.Fatalf("position = %d, want 2", exprErr.Position)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2022-03-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2022, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseDate = %v, want %v", got, want)
	}

	for _, in := range []string{"2022-13-01", "2022-02-30", "march 5", "2022/03/05"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrDate", in, err)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2022-01-02 03:04:05", time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2022-01-02T03:04:05Z", time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2022-01-02T03:04", time.Date(2022, 1, 2, 3, 4, 0, 0, time.UTC)},
		{"2022-01-02 03:04:05.250000", time.Date(2022, 1, 2, 3, 4, 5, 250_000_000, time.UTC)},
		{"2022-01-02T03:04:05+02:00", time.Date(2022, 1, 2, 1, 4, 5, 0, time.UTC)},
		{"2022-01-02T03:04:05-0430", time.Date(2022, 1, 2, 7, 34, 5, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDateTime(tc.in)
		if err != nil {
			t.Errorf("ParseDateTime(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseDateTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"2022-01-02", "2022-01-02 25:00", "yesterday"} {
		if _, err := ParseDateTime(in); !errors.Is(err, ErrDateTime) {
			t.Errorf("ParseDateTime(%q) err = %v, want ErrDateTime", in, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := parseTimeOfDay("08:30:15")
	if err != nil {
		t.Fatalf("parseTimeOfDay: %v", err)
	}
	now := time.Now().UTC()
	want := time.Date(now.Year(), now.Month(), now.Day(), 8, 30, 15, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parseTimeOfDay = %v, want %v", got, want)
	}

	for _, in := range []string{"25:00", "08:61", "08:30:61"} {
		if _, err := parseTimeOfDay(in); !errors.Is(err, ErrTime) {
			t.Errorf("parseTimeOfDay(%q) err = %v, want ErrTime", in, err)
		}
	}
}

func TestFromUnixSeconds(t *testing.T) {
	cases := []struct {
		in   float64
		want time.Time
	}{
		{1e9, time.Date(2001, 9, 9, 1, 46, 40, 0, time.UTC)},
		// millisecond and microsecond epochs auto-scale down to seconds
		{1e12, time.Date(2001, 9, 9, 1, 46, 40, 0, time.UTC)},
		{1e15, time.Date(2001, 9, 9, 1, 46, 40, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := fromUnixSeconds(tc.in); !got.Equal(tc.want) {
			t.Errorf("fromUnixSeconds(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
