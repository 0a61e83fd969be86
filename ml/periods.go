package ml

import "time"

const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodNight     = "night"
)

// PeriodOfDay buckets a time of day into morning, afternoon or night.
// Morning covers 05:00-11:59, afternoon 12:00-18:59 and night wraps
// across midnight (19:00-23:59 plus 00:00-04:59).
func PeriodOfDay(t time.Time) string {
	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes >= 5*60 && minutes <= 11*60+59:
		return PeriodMorning
	case minutes >= 12*60 && minutes <= 18*60+59:
		return PeriodAfternoon
	default:
		return PeriodNight
	}
}

type seasonRange struct {
	startMonth, startDay int
	endMonth, endDay     int
}

// High season windows. Compared on (month, day) only, so the December
// window and the January window stay consistent across the year boundary.
var highSeasonRanges = []seasonRange{
	{12, 15, 12, 31},
	{1, 1, 3, 3},
	{7, 15, 7, 31},
	{9, 11, 9, 30},
}

// IsHighSeason reports whether the date falls inside a peak travel window.
func IsHighSeason(t time.Time) bool {
	month := int(t.Month())
	day := t.Day()
	for _, r := range highSeasonRanges {
		if onOrAfter(month, day, r.startMonth, r.startDay) && onOrBefore(month, day, r.endMonth, r.endDay) {
			return true
		}
	}
	return false
}

func onOrAfter(month, day, refMonth, refDay int) bool {
	if month != refMonth {
		return month > refMonth
	}
	return day >= refDay
}

func onOrBefore(month, day, refMonth, refDay int) bool {
	if month != refMonth {
		return month < refMonth
	}
	return day <= refDay
}
