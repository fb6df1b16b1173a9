package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadCSV_DatetimeFormat tests parsing the standard export format
func TestLoadCSV_DatetimeFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	content := "timestamp,open,high,low,close,volume\n" +
		"2025-01-01 00:00:00,100,101,99,100.5,1500\n" +
		"2025-01-01 00:15:00,100.5,102,100,101.5,1800\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	candles, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 101.0, candles[0].High)
	assert.Equal(t, 99.0, candles[0].Low)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, 1500.0, candles[0].Volume)
	assert.True(t, candles[1].Timestamp.After(candles[0].Timestamp))
}

// TestLoadCSV_UnixMilliseconds tests the exchange-dump timestamp format
func TestLoadCSV_UnixMilliseconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	content := "timestamp,open,high,low,close,volume\n" +
		"1735689600000,100,101,99,100.5,1500\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	candles, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(1735689600), candles[0].Timestamp.Unix())
}

// TestLoadCSV_SkipsMalformedRows tests that bad rows degrade rather than fail the load
func TestLoadCSV_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	content := "timestamp,open,high,low,close,volume\n" +
		"2025-01-01 00:00:00,100,101,99,100.5,1500\n" +
		"not-a-timestamp,100,101,99,100.5,1500\n" +
		"2025-01-01 00:30:00,abc,101,99,100.5,1500\n" +
		"2025-01-01 00:45:00,100,101,99,100.5,1500\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	candles, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, candles, 2)
}

// TestLoadCSV_HeaderOnly tests that a data-free file is rejected
func TestLoadCSV_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,open,high,low,close,volume\n"), 0644))

	_, err := LoadCSV(path)
	assert.Error(t, err)
}
