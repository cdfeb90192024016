package scheduler

import (
	"sort"
	"strings"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// Roster is the per-person scheduling state for one run
type Roster struct {
	cfg    Config
	people map[string]*models.Person
	names  []string

	// clock counts DecrementAll calls; timedAt remembers the tick a person's
	// timer was last set so a second set within the same hour is a no-op.
	clock   int
	timedAt map[string]int
}

// NewRoster builds the roster with every timer at zero
func NewRoster(cfg Config, specs []models.PersonSpec) (*Roster, error) {
	r := &Roster{
		cfg:     cfg,
		people:  make(map[string]*models.Person, len(specs)),
		names:   make([]string, 0, len(specs)),
		timedAt: make(map[string]int, len(specs)),
	}
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, NewConfigError("people", "empty name in roster")
		}
		if _, dup := r.people[name]; dup {
			return nil, NewConfigError("people", "duplicate name %q", name)
		}
		r.people[name] = &models.Person{
			Name:         name,
			LastPosition: models.NoPosition,
			TimeOff:      models.NewHourSet(spec.TimeOff...),
			TimeOn:       models.NewHourSet(spec.TimeOn...),
		}
		r.names = append(r.names, name)
	}
	if len(r.names) == 0 {
		return nil, NewConfigError("people", "roster is empty")
	}
	sort.Strings(r.names)
	return r, nil
}

// Names returns the roster names sorted
func (r *Roster) Names() []string {
	return append([]string(nil), r.names...)
}

// Has reports whether name is on the roster
func (r *Roster) Has(name string) bool {
	_, ok := r.people[name]
	return ok
}

// Person returns the live record for name
func (r *Roster) Person(name string) (*models.Person, bool) {
	p, ok := r.people[name]
	return p, ok
}

// TTR returns the rest countdown for name; unknown names read as zero
func (r *Roster) TTR(name string) int {
	if p, ok := r.people[name]; ok {
		return p.TTR
	}
	return 0
}

// SetRestTimer starts the rest countdown for a shift at hour. The stored value
// is one more than the rest required because DecrementAll runs at the end of
// the hour. A person whose timer reads exactly TTRNight is mid-way through a
// shift that began at night, so the timer only moves up by one to keep the
// night rest.
func (r *Roster) SetRestTimer(name string, hour int) {
	p, ok := r.people[name]
	if !ok {
		return
	}
	if at, seen := r.timedAt[name]; seen && at == r.clock {
		return
	}
	r.timedAt[name] = r.clock

	if p.TTR == r.cfg.TTRNight {
		p.TTR++
		return
	}
	if r.cfg.IsNightRest(hour) {
		p.TTR = r.cfg.TTRNight + 1
	} else {
		p.TTR = r.cfg.TTRDay + 1
	}
}

// DecrementAll ends the hour for everyone
func (r *Roster) DecrementAll() {
	for _, p := range r.people {
		p.TTR--
	}
	r.clock++
}

// RecordAssignment notes that name staffed position at absolute hour. Hours
// are only added to the totals when countTowardTotal is set.
func (r *Roster) RecordAssignment(name string, position, hour int, countTowardTotal bool) {
	p, ok := r.people[name]
	if !ok {
		return
	}
	p.LastPosition = position
	if !countTowardTotal {
		return
	}
	p.TotalHours++
	if r.cfg.IsNightRest(hour) {
		p.NightHours++
	}
}

// Snapshot copies every record, sorted by name
func (r *Roster) Snapshot() []models.Person {
	out := make([]models.Person, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, *r.people[name])
	}
	return out
}
