// Package dataset turns raw time series into the stacked batch tensors
// the forecaster trains on: CSV loading, min-max normalization, sliding
// windows, calendar Fourier features and event indicators. Heavier
// preprocessing (imputation, frequency inference, cross-validation
// splitting) is out of scope and expected upstream.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Series is one univariate time series with optional extra columns used
// as future or lagged regressors.
type Series struct {
	Times  []time.Time
	Values []float64
	Extra  map[string][]float64
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Values) }

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadCSV reads a series from a CSV file with a header row. The "ds"
// column holds timestamps, "y" the observed values; every other numeric
// column becomes an extra regressor column.
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset: %s has no data rows", path)
	}

	header := records[0]
	dsCol, yCol := -1, -1
	extraCols := make(map[string]int)
	for i, name := range header {
		switch name {
		case "ds":
			dsCol = i
		case "y":
			yCol = i
		default:
			extraCols[name] = i
		}
	}
	if dsCol < 0 || yCol < 0 {
		return nil, fmt.Errorf("dataset: %s must have ds and y columns, got %v", path, header)
	}

	s := &Series{Extra: make(map[string][]float64)}
	for name := range extraCols {
		s.Extra[name] = make([]float64, 0, len(records)-1)
	}
	for lineNo, rec := range records[1:] {
		t, err := parseTime(rec[dsCol])
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row %d: %w", path, lineNo+2, err)
		}
		y, err := strconv.ParseFloat(rec[yCol], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row %d: bad y value %q", path, lineNo+2, rec[yCol])
		}
		s.Times = append(s.Times, t)
		s.Values = append(s.Values, y)
		for name, col := range extraCols {
			v, err := strconv.ParseFloat(rec[col], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d: bad %s value %q", path, lineNo+2, name, rec[col])
			}
			s.Extra[name] = append(s.Extra[name], v)
		}
	}

	log.Debug().Str("path", path).Int("rows", s.Len()).Int("extra_columns", len(s.Extra)).
		Msg("loaded series")
	return s, nil
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", v)
}
