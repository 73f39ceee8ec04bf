package news_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-assistant/internal/news"
)

func TestDisplayDate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Mar 04, 2025 09:30", news.DisplayDate("2025-03-04T09:30:00Z"))
	require.Equal(t, "2025-03-04 09:30:15", news.DisplayDate("2025-03-04 09:30:15"))
	require.Equal(t, "", news.DisplayDate(""))
}

func TestShortDescription(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", news.ShortDescription(""))
	require.Equal(t, "short...", news.ShortDescription("short"))

	long := strings.Repeat("₹", 200)
	got := news.ShortDescription(long)
	require.Equal(t, strings.Repeat("₹", 150)+"...", got)
}

func TestMatch(t *testing.T) {
	t.Parallel()

	items := []news.Item{
		{Title: "Sensex rallies", Description: "Banks lead"},
		{Title: "Rupee steady", Description: "Forex calm"},
		{Title: "Infosys results", Description: "IT major beats estimates"},
		{Title: "Bank of Baroda up", Description: ""},
	}

	got := news.Match(items, "Latest BANK news", 5)
	require.Len(t, got, 2)
	require.Equal(t, "Sensex rallies", got[0].Title)
	require.Equal(t, "Bank of Baroda up", got[1].Title)

	require.Len(t, news.Match(items, "bank", 1), 1)
	require.Empty(t, news.Match(items, "   ", 5))
	require.Empty(t, news.Match(items, "gold", 5))
}
