package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseReadings(t *testing.T) {
	readings, err := parseReadings([]string{"101=130.5", "202=57,25", " 303 = 10 "})
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"101": 130.5, "202": 57.25, "303": 10}, readings)

	_, err = parseReadings([]string{"101"})
	require.Error(t, err)

	_, err = parseReadings([]string{"=5"})
	require.Error(t, err)

	_, err = parseReadings([]string{"101=abc"})
	require.Error(t, err)
}

func TestHistoryRange(t *testing.T) {
	now := time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC)

	from, to, err := historyRange("", "", now)
	require.NoError(t, err)
	require.Equal(t, "31.03.2023", from)
	require.Equal(t, "31.03.2024", to)

	from, to, err = historyRange("01.01.2024", "15.02.2024", now)
	require.NoError(t, err)
	require.Equal(t, "01.01.2024", from)
	require.Equal(t, "15.02.2024", to)

	_, _, err = historyRange("2024-01-01", "", now)
	require.Error(t, err)
}

func TestFormatters(t *testing.T) {
	amount := 2500.0
	require.Equal(t, "2500.00", formatAmount(&amount))
	require.Equal(t, "-", formatAmount(nil))

	text := "дек 2024"
	require.Equal(t, "дек 2024", formatText(&text))
	require.Equal(t, "-", formatText(nil))
}
