package cli

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"harmonic-scanner/internal/errors"
	"harmonic-scanner/internal/models"
)

// LoadBarsCSV reads an OHLC series from a CSV file. Expected columns are
// timestamp,open,high,low,close; a leading header row is skipped when its
// first field is not numeric. Timestamps may be RFC3339 or unix seconds;
// bar indices are assigned by row order. Structural problems (bad field
// count, unparsable prices, high below low) surface as malformed-series
// errors naming the offending row.
func LoadBarsCSV(path string) (*models.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	series, _ := models.NewSeries(nil)
	row, index := 0, 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewMalformedSeriesError(row, "unreadable csv row")
		}
		row++
		if len(record) == 0 {
			continue
		}
		if row == 1 && !numeric(record[0]) && !isTimestamp(record[0]) {
			continue // header
		}

		bar, err := parseBar(record, index)
		if err != nil {
			return nil, err
		}
		if err := series.Append(bar); err != nil {
			return nil, err
		}
		index++
	}
	return series, nil
}

func parseBar(record []string, index int) (models.Bar, error) {
	if len(record) < 5 {
		return models.Bar{}, errors.NewMalformedSeriesError(index, "want 5 columns: timestamp,open,high,low,close")
	}

	ts := parseTimestamp(record[0])
	prices := make([]float64, 4)
	for i, field := range record[1:5] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return models.Bar{}, errors.NewMalformedSeriesError(index, "unparsable price "+strconv.Quote(field))
		}
		prices[i] = v
	}

	return models.Bar{
		Index:     index,
		Timestamp: ts,
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
	}, nil
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isTimestamp(s string) bool {
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// parseTimestamp accepts RFC3339 or unix seconds; anything else yields the
// zero time, since timestamps are informational only.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}
