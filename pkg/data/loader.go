package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/evoquant/darwin-bot/pkg/types"
)

// LoadCSV loads OHLCV candles from a CSV file with a header row and columns
// timestamp,open,high,low,close,volume. Timestamps may be Unix milliseconds
// or "2006-01-02 15:04:05" datetimes. Rows that fail to parse are skipped.
func LoadCSV(filename string) ([]types.OHLCV, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file must have at least 2 rows (header + data)")
	}

	var candles []types.OHLCV

	// Skip header row
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 6 {
			continue
		}

		var timestamp time.Time
		if ts, parseErr := strconv.ParseInt(record[0], 10, 64); parseErr == nil {
			timestamp = time.Unix(ts/1000, 0)
		} else {
			timestamp, err = time.Parse("2006-01-02 15:04:05", record[0])
			if err != nil {
				timestamp, err = time.Parse("2006-01-02 15:04", record[0])
				if err != nil {
					continue
				}
			}
		}

		open, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		high, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		low, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			continue
		}
		close, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			continue
		}
		volume, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			continue
		}

		candles = append(candles, types.OHLCV{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
	}

	return candles, nil
}

// Resample aggregates base-timeframe candles into larger buckets of the
// given factor. A trailing partial bucket is kept so the latest price is
// always represented.
func Resample(candles []types.OHLCV, factor int) []types.OHLCV {
	if factor <= 1 || len(candles) == 0 {
		return candles
	}

	var out []types.OHLCV
	for start := 0; start < len(candles); start += factor {
		end := start + factor
		if end > len(candles) {
			end = len(candles)
		}
		bucket := candles[start:end]

		agg := types.OHLCV{
			Timestamp: bucket[0].Timestamp,
			Open:      bucket[0].Open,
			High:      bucket[0].High,
			Low:       bucket[0].Low,
			Close:     bucket[len(bucket)-1].Close,
		}
		for _, c := range bucket {
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Volume += c.Volume
		}
		out = append(out, agg)
	}
	return out
}
