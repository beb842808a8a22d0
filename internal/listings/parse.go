package listings

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var priceRegex = regexp.MustCompile(`^\$?(\d[\d,]*(?:\.\d+)?)$`)

// parsePrice reads an export price such as "$1,234.00".
func parsePrice(raw string) Float {
	m := priceRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Float{}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || math.IsInf(f, 0) {
		return Float{}
	}
	return SomeFloat(f)
}

// perPerson divides price by capacity; missing or non-positive capacity yields undefined.
func perPerson(price Float, accommodates Int) Float {
	if !price.Valid || !accommodates.Valid || accommodates.Value <= 0 {
		return Float{}
	}
	return SomeFloat(price.Value / float64(accommodates.Value))
}

// parsePercent reads "93%" as 0.93. Values outside 0..100 are rejected.
func parsePercent(raw string) Float {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return Float{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 100 {
		return Float{}
	}
	return SomeFloat(f / 100)
}

// parseCount reads a whole number; "3.0" is accepted, "2.5" is not.
func parseCount(raw string) Int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Int{}
	}
	if i, err := strconv.Atoi(s); err == nil {
		return SomeInt(i)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Int{}
	}
	return SomeInt(int(f))
}

// parseScore reads a plain decimal such as a review score.
func parseScore(raw string) Float {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Float{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Float{}
	}
	return SomeFloat(f)
}

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "1/2/2006", "01/02/2006",
}

// parseDate reads a calendar date. Timestamps are cut to their date part.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) > 10 && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tenure is the calendar-year difference between the scrape date and the
// host join date.
func tenure(hostSince, lastScraped string) Int {
	since, ok := parseDate(hostSince)
	if !ok {
		return Int{}
	}
	scraped, ok := parseDate(lastScraped)
	if !ok {
		return Int{}
	}
	return SomeInt(scraped.Year() - since.Year())
}
