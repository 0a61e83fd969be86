package ml

import (
	"errors"
	"sort"
	"strconv"
	"time"
)

const (
	FlightTypeNational      = "N"
	FlightTypeInternational = "I"
)

// FlightRecord is one raw flight. ScheduledAt and ActualAt are only set on
// historical records used for training; inference requests carry just the
// three categorical fields.
type FlightRecord struct {
	Airline     string
	FlightType  string
	Month       int
	ScheduledAt time.Time
	ActualAt    time.Time
}

// Vocabulary is the frozen one-hot column space built once at training time.
// It is serialized inside the model artifact and never grows afterwards:
// categories unseen during training simply produce no column at inference.
type Vocabulary struct {
	Columns  []string `json:"columns"`
	Airlines []string `json:"airlines"`

	index    map[string]int
	airlines map[string]struct{}
}

// BuildVocabulary derives the column space from the training records:
// one column per observed airline, all twelve months, both flight types,
// the three period-of-day buckets and the high-season flag.
func BuildVocabulary(records []FlightRecord) *Vocabulary {
	seen := make(map[string]struct{})
	for _, rec := range records {
		if rec.Airline != "" {
			seen[rec.Airline] = struct{}{}
		}
	}
	airlines := make([]string, 0, len(seen))
	for name := range seen {
		airlines = append(airlines, name)
	}
	sort.Strings(airlines)

	columns := make([]string, 0, len(airlines)+18)
	for _, name := range airlines {
		columns = append(columns, "OPERA_"+name)
	}
	for month := 1; month <= 12; month++ {
		columns = append(columns, "MES_"+strconv.Itoa(month))
	}
	columns = append(columns,
		"TIPOVUELO_"+FlightTypeInternational,
		"TIPOVUELO_"+FlightTypeNational,
		"period_day_"+PeriodAfternoon,
		"period_day_"+PeriodMorning,
		"period_day_"+PeriodNight,
		"high_season",
	)

	vocab := &Vocabulary{Columns: columns, Airlines: airlines}
	vocab.Init()
	return vocab
}

// Init rebuilds the lookup maps. Must be called after deserializing a
// vocabulary from an artifact.
func (v *Vocabulary) Init() {
	v.index = make(map[string]int, len(v.Columns))
	for i, column := range v.Columns {
		v.index[column] = i
	}
	v.airlines = make(map[string]struct{}, len(v.Airlines))
	for _, name := range v.Airlines {
		v.airlines[name] = struct{}{}
	}
}

// Encode maps one record onto the frozen column space. Columns absent from
// the record are 0 and categories outside the vocabulary are dropped, so the
// vector length and order are identical for every record. Pure: the
// vocabulary is read but never mutated.
func (v *Vocabulary) Encode(rec FlightRecord) ([]float64, error) {
	if v.index == nil {
		return nil, errors.New("vocabulary not initialized")
	}
	vec := make([]float64, len(v.Columns))
	v.mark(vec, "OPERA_"+rec.Airline)
	v.mark(vec, "MES_"+strconv.Itoa(rec.Month))
	v.mark(vec, "TIPOVUELO_"+rec.FlightType)
	if !rec.ScheduledAt.IsZero() {
		v.mark(vec, "period_day_"+PeriodOfDay(rec.ScheduledAt))
		if IsHighSeason(rec.ScheduledAt) {
			v.mark(vec, "high_season")
		}
	}
	return vec, nil
}

func (v *Vocabulary) mark(vec []float64, column string) {
	if idx, ok := v.index[column]; ok {
		vec[idx] = 1
	}
}

// KnowsAirline reports whether the operator was seen at training time.
func (v *Vocabulary) KnowsAirline(name string) bool {
	_, ok := v.airlines[name]
	return ok
}
