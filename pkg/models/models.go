package models

import (
	"fmt"
	"sort"
	"strings"
)

// HoursInDay is the number of hourly slots in one planned day
const HoursInDay = 24

// NoPosition marks a person who has not been assigned to any position yet
const NoPosition = -1

// Action is the per-hour instruction for a position
type Action int

const (
	// ActionNone carries the previous team forward
	ActionNone Action = iota
	// ActionSwap replaces the whole team
	ActionSwap
	// ActionResize grows or shrinks the existing team
	ActionResize
)

func (a Action) String() string {
	switch a {
	case ActionSwap:
		return "swap"
	case ActionResize:
		return "resize"
	default:
		return "none"
	}
}

// ParseAction reads an action token. Blank cells mean no action.
func ParseAction(token string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "none", "nan":
		return ActionNone, nil
	case "swap":
		return ActionSwap, nil
	case "resize":
		return ActionResize, nil
	}
	return ActionNone, fmt.Errorf("unrecognized action %q", token)
}

// MarshalText implements encoding.TextMarshaler
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// HourSet is a set of absolute hour indices. Hour 0 is 00:00 of the first planned day.
type HourSet map[int]struct{}

// NewHourSet builds a set from a list of hours
func NewHourSet(hours ...int) HourSet {
	set := make(HourSet, len(hours))
	for _, h := range hours {
		set[h] = struct{}{}
	}
	return set
}

// Has reports whether hour is in the set. A nil set contains nothing.
func (s HourSet) Has(hour int) bool {
	_, ok := s[hour]
	return ok
}

// Sorted returns the hours in ascending order
func (s HourSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

// PersonSpec is a roster entry as read from the configuration source
type PersonSpec struct {
	Name    string `json:"name" yaml:"name"`
	TimeOff []int  `json:"time_off,omitempty" yaml:"time_off,omitempty"`
	TimeOn  []int  `json:"time_on,omitempty" yaml:"time_on,omitempty"`
}

// Person is the mutable per-person scheduling record
type Person struct {
	Name string `json:"name"`
	// TTR counts the hours left to rest. Zero or below means eligible; the
	// magnitude below zero is how long the person has rested past the minimum.
	TTR          int     `json:"ttr"`
	LastPosition int     `json:"last_position"`
	TotalHours   int     `json:"total_hours"`
	NightHours   int     `json:"night_hours"`
	TimeOff      HourSet `json:"-"`
	TimeOn       HourSet `json:"-"`
}

// Rest is the remaining rest requirement, never negative
func (p *Person) Rest() int {
	if p.TTR < 0 {
		return 0
	}
	return p.TTR
}

// Available reports whether the person may work the absolute hour
func (p *Person) Available(hour int) bool {
	if p.TimeOff.Has(hour) {
		return false
	}
	if len(p.TimeOn) > 0 && !p.TimeOn.Has(hour) {
		return false
	}
	return true
}

// PositionConfig describes how one position is staffed over a representative day
type PositionConfig struct {
	Name      string   `json:"name" yaml:"name"`
	Actions   []Action `json:"actions" yaml:"actions"`
	TeamSizes []int    `json:"team_sizes" yaml:"team_sizes"`
}

// Validate checks the per-hour lists have one entry per hour
func (p *PositionConfig) Validate() error {
	if len(p.Actions) != HoursInDay {
		return fmt.Errorf("action list has %d entries, expected %d", len(p.Actions), HoursInDay)
	}
	if len(p.TeamSizes) != HoursInDay {
		return fmt.Errorf("team size list has %d entries, expected %d", len(p.TeamSizes), HoursInDay)
	}
	for hour, size := range p.TeamSizes {
		if size < 0 {
			return fmt.Errorf("negative team size %d at %02d:00", size, hour)
		}
	}
	return nil
}

// Plan is everything the engine needs to start: who, where, and the last committed day
type Plan struct {
	PriorDate string           `json:"prior_date,omitempty" yaml:"prior_date,omitempty"`
	People    []PersonSpec     `json:"people" yaml:"people"`
	Positions []PositionConfig `json:"positions" yaml:"positions"`
	PriorDay  Schedule         `json:"prior_day,omitempty" yaml:"prior_day,omitempty"`
}

// PositionNames lists the display names in position order
func (p *Plan) PositionNames() []string {
	names := make([]string, len(p.Positions))
	for i, pos := range p.Positions {
		names[i] = pos.Name
	}
	return names
}

// Names lists the roster names in input order
func (p *Plan) Names() []string {
	names := make([]string, len(p.People))
	for i, person := range p.People {
		names[i] = person.Name
	}
	return names
}
