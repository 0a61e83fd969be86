package ml

import (
	"reflect"
	"testing"
	"time"
)

func trainingRecords() []FlightRecord {
	return []FlightRecord{
		{Airline: "Grupo LATAM", FlightType: "N", Month: 7,
			ScheduledAt: time.Date(2017, 7, 2, 23, 30, 0, 0, time.UTC),
			ActualAt:    time.Date(2017, 7, 3, 0, 10, 0, 0, time.UTC)},
		{Airline: "Sky Airline", FlightType: "I", Month: 4,
			ScheduledAt: time.Date(2017, 4, 3, 8, 0, 0, 0, time.UTC),
			ActualAt:    time.Date(2017, 4, 3, 8, 5, 0, 0, time.UTC)},
		{Airline: "Copa Air", FlightType: "I", Month: 12,
			ScheduledAt: time.Date(2017, 12, 20, 13, 15, 0, 0, time.UTC),
			ActualAt:    time.Date(2017, 12, 20, 13, 15, 0, 0, time.UTC)},
	}
}

func TestBuildVocabularyIsFrozenAndOrdered(t *testing.T) {
	vocab := BuildVocabulary(trainingRecords())

	// 3 airlines + 12 months + 2 flight types + 3 periods + high season
	if len(vocab.Columns) != 3+12+2+3+1 {
		t.Fatalf("unexpected vocabulary size: %d", len(vocab.Columns))
	}
	if vocab.Columns[0] != "OPERA_Copa Air" {
		t.Fatalf("expected airlines sorted first, got %q", vocab.Columns[0])
	}
	again := BuildVocabulary(trainingRecords())
	if !reflect.DeepEqual(vocab.Columns, again.Columns) {
		t.Fatal("vocabulary column order is not deterministic")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	vocab := BuildVocabulary(trainingRecords())
	rec := FlightRecord{Airline: "Grupo LATAM", FlightType: "N", Month: 3}

	first, err := vocab.Encode(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := vocab.Encode(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("encoding the same record twice produced different vectors")
	}
	if len(first) != len(vocab.Columns) {
		t.Fatalf("vector length %d does not match vocabulary %d", len(first), len(vocab.Columns))
	}
}

func TestEncodeSetsExpectedColumns(t *testing.T) {
	vocab := BuildVocabulary(trainingRecords())
	rec := FlightRecord{
		Airline:     "Grupo LATAM",
		FlightType:  "N",
		Month:       12,
		ScheduledAt: time.Date(2017, 12, 20, 8, 30, 0, 0, time.UTC),
	}
	vec, err := vocab.Encode(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]float64{
		"OPERA_Grupo LATAM":  1,
		"OPERA_Copa Air":     0,
		"OPERA_Sky Airline":  0,
		"MES_12":             1,
		"MES_7":              0,
		"TIPOVUELO_N":        1,
		"TIPOVUELO_I":        0,
		"period_day_morning": 1,
		"period_day_night":   0,
		"high_season":        1,
	}
	for column, value := range want {
		idx := columnIndex(t, vocab, column)
		if vec[idx] != value {
			t.Fatalf("column %s = %f, want %f", column, vec[idx], value)
		}
	}
}

func TestEncodeDropsUnknownCategories(t *testing.T) {
	vocab := BuildVocabulary(trainingRecords())
	vec, err := vocab.Encode(FlightRecord{Airline: "Fly By Night", FlightType: "N", Month: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != len(vocab.Columns) {
		t.Fatal("unknown category must not change the vector length")
	}
	for _, column := range vocab.Columns {
		if len(column) > 6 && column[:6] == "OPERA_" && vec[columnIndex(t, vocab, column)] != 0 {
			t.Fatalf("unknown airline set column %s", column)
		}
	}
}

func TestEncodeWithoutTimestampSkipsPeriodColumns(t *testing.T) {
	vocab := BuildVocabulary(trainingRecords())
	vec, err := vocab.Encode(FlightRecord{Airline: "Sky Airline", FlightType: "I", Month: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, column := range []string{"period_day_morning", "period_day_afternoon", "period_day_night", "high_season"} {
		if vec[columnIndex(t, vocab, column)] != 0 {
			t.Fatalf("expected %s to be 0 without a scheduled time", column)
		}
	}
}

func TestKnowsAirline(t *testing.T) {
	vocab := BuildVocabulary(trainingRecords())
	if !vocab.KnowsAirline("Grupo LATAM") {
		t.Fatal("expected Grupo LATAM to be known")
	}
	if vocab.KnowsAirline("Fly By Night") {
		t.Fatal("expected Fly By Night to be unknown")
	}
}

func columnIndex(t *testing.T, vocab *Vocabulary, column string) int {
	t.Helper()
	for i, name := range vocab.Columns {
		if name == column {
			return i
		}
	}
	t.Fatalf("column %s not in vocabulary", column)
	return -1
}
