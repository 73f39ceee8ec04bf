package ticker

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatItem renders one ticker entry, e.g. "TCS: ₹3,450.20 ▼ 0.75%".
func FormatItem(q Quote) string {
	arrow := "▲"
	if q.ChangePct < 0 {
		arrow = "▼"
	}
	return inPrinter.Sprintf("%s: ₹%.2f %s %.2f%%", q.Symbol, q.Price, arrow, math.Abs(q.ChangePct))
}

// FormatLine renders the scrolling ticker with a leading clock stamp in loc.
func FormatLine(snap *Snapshot, at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	quotes := snap.Quotes()
	if len(quotes) == 0 {
		return "Loading stock data... | Please wait..."
	}
	items := make([]string, 0, len(quotes)+1)
	items = append(items, "🕒 "+at.In(loc).Format("15:04:05"))
	for _, q := range quotes {
		items = append(items, FormatItem(q))
	}
	return strings.Join(items, " | ")
}
