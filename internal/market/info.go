package market

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable marks a company figure the source did not report.
const NotAvailable = "N/A"

var infoPrinter = message.NewPrinter(language.English)

// CompanyInfo is the company panel shown next to a chart. Every value is a
// display string.
type CompanyInfo struct {
	Name             string `json:"name"`
	Sector           string `json:"sector"`
	Industry         string `json:"industry"`
	MarketCap        string `json:"market_cap"`
	PERatio          string `json:"pe_ratio"`
	FiftyTwoWeekHigh string `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  string `json:"fifty_two_week_low"`
	DividendYield    string `json:"dividend_yield"`
	AvgVolume        string `json:"avg_volume"`
	Beta             string `json:"beta"`
}

// Fundamentals are the raw figures behind CompanyInfo. Zero or empty means
// not reported. DividendYield is a fraction, 0.0123 for 1.23%.
type Fundamentals struct {
	LongName         string
	Sector           string
	Industry         string
	MarketCap        float64
	TrailingPE       float64
	FiftyTwoWeekHigh float64
	FiftyTwoWeekLow  float64
	DividendYield    float64
	AvgVolume        float64
	Beta             float64
}

// Info formats f for display. Market cap reads in billions from 1e9 up and
// in millions below that.
func (f Fundamentals) Info() CompanyInfo {
	return CompanyInfo{
		Name:             textOrNA(f.LongName),
		Sector:           textOrNA(f.Sector),
		Industry:         textOrNA(f.Industry),
		MarketCap:        marketCap(f.MarketCap),
		PERatio:          number(f.TrailingPE),
		FiftyTwoWeekHigh: number(f.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  number(f.FiftyTwoWeekLow),
		DividendYield:    percent(f.DividendYield),
		AvgVolume:        number(f.AvgVolume),
		Beta:             beta(f.Beta),
	}
}

func textOrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func marketCap(v float64) string {
	switch {
	case v <= 0:
		return NotAvailable
	case v >= 1e9:
		return infoPrinter.Sprintf("₹%.2fB", v/1e9)
	default:
		return infoPrinter.Sprintf("₹%.2fM", v/1e6)
	}
}

func number(v float64) string {
	if v == 0 {
		return NotAvailable
	}
	return infoPrinter.Sprintf("%.2f", v)
}

func percent(v float64) string {
	if v == 0 {
		return NotAvailable
	}
	return infoPrinter.Sprintf("%.2f%%", v*100)
}

// beta is shown unrounded.
func beta(v float64) string {
	if v == 0 {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
