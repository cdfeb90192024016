package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// ParseHours turns a time-off or time-on cell into absolute hour indices,
// hour 0 being 00:00 of firstDay. The cell holds comma-separated entries:
//
//	14/3.              the whole day (trailing dot as typed in sheets)
//	14/3               the whole day
//	14/3 08:00-12:00   hours 08 to 11 of that day
//
// A range whose end is not after its start runs past midnight. The year is
// taken from firstDay; dates more than six months earlier roll into the next
// year. Minutes are ignored.
func ParseHours(cell string, firstDay time.Time) ([]int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "nan" {
		return nil, nil
	}
	first := dateOnly(firstDay)

	var hours []int
	for _, entry := range strings.Split(cell, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entryHours, err := parseEntry(entry, first)
		if err != nil {
			return nil, fmt.Errorf("time entry %q: %w", entry, err)
		}
		hours = append(hours, entryHours...)
	}
	return hours, nil
}

func parseEntry(entry string, first time.Time) ([]int, error) {
	datePart, rangePart, hasRange := strings.Cut(entry, " ")
	datePart = strings.TrimSuffix(datePart, ".")

	date, err := parseDayMonth(datePart, first)
	if err != nil {
		return nil, err
	}
	offset := int(date.Sub(first).Hours())

	if !hasRange || strings.TrimSpace(rangePart) == "" {
		out := make([]int, models.HoursInDay)
		for i := range out {
			out[i] = offset + i
		}
		return out, nil
	}

	startText, endText, ok := strings.Cut(strings.TrimSpace(rangePart), "-")
	if !ok {
		return nil, fmt.Errorf("range %q is not HH:MM-HH:MM", rangePart)
	}
	start, err := parseClock(startText)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(endText)
	if err != nil {
		return nil, err
	}
	if end <= start {
		end += models.HoursInDay
	}

	out := make([]int, 0, end-start)
	for h := start; h < end; h++ {
		out = append(out, offset+h)
	}
	return out, nil
}

func parseDayMonth(text string, first time.Time) (time.Time, error) {
	dayText, monthText, ok := strings.Cut(strings.TrimSpace(text), "/")
	if !ok {
		return time.Time{}, fmt.Errorf("date %q is not d/m", text)
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayText))
	if err != nil {
		return time.Time{}, fmt.Errorf("day in %q: %w", text, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthText))
	if err != nil {
		return time.Time{}, fmt.Errorf("month in %q: %w", text, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q out of range", text)
	}

	date := time.Date(first.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return time.Time{}, fmt.Errorf("date %q does not exist", text)
	}
	if date.Before(first.AddDate(0, -6, 0)) {
		date = date.AddDate(1, 0, 0)
	}
	return date, nil
}

func parseClock(text string) (int, error) {
	hourText, _, _ := strings.Cut(strings.TrimSpace(text), ":")
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return 0, fmt.Errorf("time %q: %w", text, err)
	}
	if hour < 0 || hour > models.HoursInDay {
		return 0, fmt.Errorf("time %q out of range", text)
	}
	return hour, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FirstDay resolves the date of the first planned day: first when set,
// otherwise the day after prior. Both use the YYYY-MM-DD sheet format.
func FirstDay(prior, first string) (time.Time, error) {
	if first != "" {
		t, err := time.Parse(models.DateLayout, first)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse first day %q: %w", first, err)
		}
		return t, nil
	}
	t, err := time.Parse(models.DateLayout, prior)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse prior day %q: %w", prior, err)
	}
	return t.AddDate(0, 0, 1), nil
}
