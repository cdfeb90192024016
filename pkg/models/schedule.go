package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// DateLayout is the sheet naming format for planned days
const DateLayout = "2006-01-02"

// Team is the ordered list of people staffing one position for one hour
type Team []string

// MarshalJSON keeps unstaffed teams as [] rather than null
func (t Team) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Contains reports whether name is in the team
func (t Team) Contains(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

// String joins the team the way it is written to a sheet cell
func (t Team) String() string {
	return strings.Join(t, ",")
}

// ParseTeam splits a sheet cell into a team. Blank cells are empty teams.
func ParseTeam(cell string) Team {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "nan" {
		return Team{}
	}
	parts := strings.Split(cell, ",")
	team := make(Team, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			team = append(team, p)
		}
	}
	return team
}

// ScheduleHour holds one team per position for a single hour
type ScheduleHour []Team

// Schedule is a run of consecutive hours, 24 per day
type Schedule []ScheduleHour

// EmptyDay returns 24 hours of unstaffed teams for the given number of positions
func EmptyDay(positions int) Schedule {
	day := make(Schedule, HoursInDay)
	for h := range day {
		day[h] = make(ScheduleHour, positions)
		for p := range day[h] {
			day[h][p] = Team{}
		}
	}
	return day
}

// Days is the number of whole days covered
func (s Schedule) Days() int {
	return len(s) / HoursInDay
}

// Day returns the 24 hours of day i
func (s Schedule) Day(i int) Schedule {
	return s[i*HoursInDay : (i+1)*HoursInDay]
}

// Clone deep-copies the schedule
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for h, hour := range s {
		out[h] = make(ScheduleHour, len(hour))
		for p, team := range hour {
			out[h][p] = append(Team{}, team...)
		}
	}
	return out
}

// Text renders one line per hour, teams separated by '|'. The output is the
// canonical form used for fingerprints.
func (s Schedule) Text() string {
	var b strings.Builder
	for h, hour := range s {
		fmt.Fprintf(&b, "%02d:00", h%HoursInDay)
		for _, team := range hour {
			b.WriteByte('|')
			b.WriteString(team.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Fingerprint is a stable digest of the schedule; equal schedules give equal values
func (s Schedule) Fingerprint() uint64 {
	return xxh3.HashString(s.Text())
}

// FingerprintHex formats Fingerprint for logs and API responses
func (s Schedule) FingerprintHex() string {
	return fmt.Sprintf("%016x", s.Fingerprint())
}

// NextDate returns the day after a YYYY-MM-DD date
func NextDate(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format(DateLayout), nil
}

// DayNames names the planned days. The first day is first when given, otherwise
// the day after prior; later days follow by date. Without a usable prior date
// the days are numbered.
func DayNames(prior, first string, days int) []string {
	names := make([]string, 0, days)
	current := first
	if current == "" && prior != "" {
		if next, err := NextDate(prior); err == nil {
			current = next
		}
	}
	for i := 0; i < days; i++ {
		if current == "" {
			names = append(names, fmt.Sprintf("day-%d", i+1))
			continue
		}
		names = append(names, current)
		next, err := NextDate(current)
		if err != nil {
			next = ""
		}
		current = next
	}
	return names
}
