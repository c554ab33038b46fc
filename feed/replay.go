package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/papertrader/market"
	"github.com/shopspring/decimal"
)

// LoadCSV reads a recorded tape and groups rows sharing a timestamp into one
// batch. Expected columns: time,symbol,price with RFC3339 times. A header row
// is allowed. Non-positive prices are clamped to Floor.
func LoadCSV(r io.Reader) (*Script, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		batches [][]market.Quote
		last    time.Time
		line    int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}
		if len(row) != 3 {
			return nil, fmt.Errorf("line %d: expected time,symbol,price got %d columns", line, len(row))
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		sym := strings.TrimSpace(row[1])
		if sym == "" {
			return nil, fmt.Errorf("line %d: empty symbol", line)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: price: %w", line, err)
		}
		if price.LessThan(Floor) {
			price = Floor
		}

		q := market.Quote{Symbol: sym, Price: price, Time: ts}
		if len(batches) == 0 || !ts.Equal(last) {
			batches = append(batches, nil)
			last = ts
		}
		batches[len(batches)-1] = append(batches[len(batches)-1], q)
	}
	return NewScript(batches...), nil
}

// OpenCSV loads a tape from a file.
func OpenCSV(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tape: %w", err)
	}
	defer f.Close()

	s, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read tape %s: %w", path, err)
	}
	return s, nil
}
