package ticker

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatItem(t *testing.T) {
	t.Parallel()

	require.Equal(t, "TATAMOTORS: ₹780.10 ▲ 2.15%", FormatItem(Quote{Symbol: "TATAMOTORS", Price: 780.1, ChangePct: 2.15}))
	require.Equal(t, "INFY: ₹520.15 ▼ 0.25%", FormatItem(Quote{Symbol: "INFY", Price: 520.15, ChangePct: -0.25}))
}

func TestFormatLine(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	snap := newSnapshot(1, at, []Quote{
		{Symbol: "TATAMOTORS", Price: 780.1, ChangePct: 2.15},
		{Symbol: "INFY", Price: 520.15, ChangePct: -0.25},
	})

	line := FormatLine(snap, at, time.UTC)

	require.True(t, strings.HasPrefix(line, "🕒 09:30:00 | "))
	require.Less(t, strings.Index(line, "TATAMOTORS"), strings.Index(line, "INFY"))
	require.Equal(t, "Loading stock data... | Please wait...", FormatLine(nil, at, nil))
}
