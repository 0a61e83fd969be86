package ml

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2023, 6, 14, hour, minute, 0, 0, time.UTC)
}

func TestPeriodOfDayBoundaries(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         string
	}{
		{5, 0, PeriodMorning},
		{8, 30, PeriodMorning},
		{11, 59, PeriodMorning},
		{12, 0, PeriodAfternoon},
		{15, 45, PeriodAfternoon},
		{18, 59, PeriodAfternoon},
		{19, 0, PeriodNight},
		{23, 59, PeriodNight},
		{0, 0, PeriodNight},
		{3, 12, PeriodNight},
		{4, 59, PeriodNight},
	}
	for _, tc := range cases {
		if got := PeriodOfDay(at(tc.hour, tc.minute)); got != tc.want {
			t.Fatalf("PeriodOfDay(%02d:%02d) = %q, want %q", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestPeriodOfDayIsTotal(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			got := PeriodOfDay(at(hour, minute))
			if got != PeriodMorning && got != PeriodAfternoon && got != PeriodNight {
				t.Fatalf("PeriodOfDay(%02d:%02d) = %q, not a known bucket", hour, minute, got)
			}
		}
	}
}

func TestIsHighSeason(t *testing.T) {
	cases := []struct {
		month, day int
		want       bool
	}{
		{12, 14, false},
		{12, 15, true},
		{12, 31, true},
		{1, 1, true},
		{2, 10, true},
		{3, 3, true},
		{3, 4, false},
		{7, 14, false},
		{7, 15, true},
		{7, 31, true},
		{8, 1, false},
		{9, 10, false},
		{9, 11, true},
		{9, 30, true},
		{10, 1, false},
		{6, 14, false},
	}
	for _, tc := range cases {
		date := time.Date(2023, time.Month(tc.month), tc.day, 12, 0, 0, 0, time.UTC)
		if got := IsHighSeason(date); got != tc.want {
			t.Fatalf("IsHighSeason(%02d-%02d) = %v, want %v", tc.month, tc.day, got, tc.want)
		}
	}
}

func TestIsHighSeasonAcrossYearBoundary(t *testing.T) {
	lateDecember := time.Date(2022, 12, 28, 9, 0, 0, 0, time.UTC)
	earlyJanuary := time.Date(2023, 1, 4, 9, 0, 0, 0, time.UTC)
	if !IsHighSeason(lateDecember) {
		t.Fatal("expected late December to be high season")
	}
	if !IsHighSeason(earlyJanuary) {
		t.Fatal("expected early January to be high season")
	}
}
