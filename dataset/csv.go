// Package dataset loads historical flight CSV exports for training.
package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"flightdelay/ml"
)

const timestampLayout = "2006-01-02 15:04:05"

var requiredColumns = []string{"Fecha-I", "Fecha-O", "OPERA", "TIPOVUELO", "MES"}

type Options struct {
	// Latin1 decodes the file as ISO-8859-1 before parsing. Older exports
	// of the flights dataset are not UTF-8 and garble accented operator
	// names otherwise.
	Latin1 bool
}

// LoadFlights reads a training CSV from disk. See ReadFlights.
func LoadFlights(path string, opts Options) ([]ml.FlightRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadFlights(file, opts)
}

// ReadFlights parses historical flight rows. Every field arrives as a raw
// string and is typed explicitly here; nothing relies on the reader guessing
// column types.
func ReadFlights(r io.Reader, opts Options) ([]ml.FlightRecord, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}

	df := dataframe.ReadCSV(r, dataframe.WithTypes(map[string]series.Type{
		"Fecha-I":   series.String,
		"Fecha-O":   series.String,
		"OPERA":     series.String,
		"TIPOVUELO": series.String,
		"MES":       series.String,
	}))
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	names := make(map[string]struct{}, len(df.Names()))
	for _, name := range df.Names() {
		names[name] = struct{}{}
	}
	for _, column := range requiredColumns {
		if _, ok := names[column]; !ok {
			return nil, fmt.Errorf("missing column %q", column)
		}
	}

	scheduled := df.Col("Fecha-I").Records()
	actual := df.Col("Fecha-O").Records()
	airlines := df.Col("OPERA").Records()
	flightTypes := df.Col("TIPOVUELO").Records()
	months := df.Col("MES").Records()

	records := make([]ml.FlightRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		month, err := strconv.Atoi(strings.TrimSpace(months[i]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid MES %q", i, months[i])
		}
		scheduledAt, err := time.Parse(timestampLayout, scheduled[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid Fecha-I %q", i, scheduled[i])
		}
		actualAt, err := time.Parse(timestampLayout, actual[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid Fecha-O %q", i, actual[i])
		}
		records = append(records, ml.FlightRecord{
			Airline:     strings.TrimSpace(airlines[i]),
			FlightType:  strings.TrimSpace(flightTypes[i]),
			Month:       month,
			ScheduledAt: scheduledAt,
			ActualAt:    actualAt,
		})
	}
	return records, nil
}
