package scheduler

import (
	"log/slog"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// dayBuild is the state of one day under construction
type dayBuild struct {
	s      *Scheduler
	day    int
	hour   int
	watch  NightWatchSet
	booked map[string]int
}

func (b *dayBuild) absHour() int {
	return b.day*models.HoursInDay + b.hour
}

func (b *dayBuild) slot(position int) Slot {
	return Slot{Day: b.day, Hour: b.hour, Position: b.s.positions[position].Name}
}

func (b *dayBuild) night() bool {
	return b.s.cfg.IsNightWatch(b.hour)
}

// assign resolves the team for one position at the current hour. prev is the
// team that staffed the position in the previous hour.
func (b *dayBuild) assign(position int, prev models.Team) (models.Team, error) {
	pc := b.s.positions[position]
	size := pc.TeamSizes[b.hour]

	switch pc.Actions[b.hour] {
	case models.ActionSwap:
		return b.swap(position, size, make(models.Team, 0, size))
	case models.ActionResize:
		return b.resize(position, prev, size)
	}

	team := append(models.Team{}, prev...)
	if b.hour == 0 {
		// Carried over from the previous night, so they count as night watchers
		// for this day even though no night pick placed them.
		b.watch.Add(team...)
	}
	return team, nil
}

// swap appends count fresh picks to team
func (b *dayBuild) swap(position, count int, team models.Team) (models.Team, error) {
	target := len(team) + count
	for len(team) < target {
		pool, rejected := b.s.roster.Eligible(EligibilityQuery{
			Hour:     b.absHour(),
			Position: position,
			Night:    b.night(),
			Watch:    b.watch,
			Booked:   b.booked,
		})
		name, ok := b.s.selector.Pick(pool)
		if !ok {
			return nil, &InfeasibleError{
				Slot:     b.slot(position),
				TeamSize: target,
				Filled:   len(team),
				Rejected: rejected,
			}
		}
		if err := b.checkPick(position, name); err != nil {
			return nil, err
		}
		b.s.roster.SetRestTimer(name, b.hour)
		b.booked[name] = position
		if b.night() {
			b.watch.Add(name)
		}
		team = append(team, name)
		b.s.logger.Debug("picked",
			slog.Int("day", b.day+1),
			slog.Int("hour", b.hour),
			slog.String("position", b.s.positions[position].Name),
			slog.String("name", name),
			slog.Int("pool", len(pool)))
	}
	return team, nil
}

// checkPick re-checks a selected name against the eligibility rules
func (b *dayBuild) checkPick(position int, name string) error {
	p, ok := b.s.roster.Person(name)
	switch {
	case !ok:
		return &InvariantError{Slot: b.slot(position), Name: name, Rule: "picked a name outside the roster"}
	case p.TTR > 0:
		return &InvariantError{Slot: b.slot(position), Name: name, Rule: "picked a resting person"}
	case !p.Available(b.absHour()):
		return &InvariantError{Slot: b.slot(position), Name: name, Rule: "picked an unavailable person"}
	case b.night() && b.watch.Has(name):
		return &InvariantError{Slot: b.slot(position), Name: name, Rule: "picked a night watcher twice in one night"}
	}
	if _, booked := b.booked[name]; booked {
		return &InvariantError{Slot: b.slot(position), Name: name, Rule: "picked a person already staffed this hour"}
	}
	return nil
}

// resize derives the team from prev by releasing or adding members
func (b *dayBuild) resize(position int, prev models.Team, size int) (models.Team, error) {
	old := len(prev)
	if old == size {
		return nil, NewConfigError(b.slot(position).String(),
			"resize to unchanged team size %d", size)
	}
	team := append(models.Team{}, prev...)
	if size > old {
		return b.swap(position, size-old, team)
	}
	for len(team) > size {
		i := b.s.rng.Intn(len(team))
		released := team[i]
		team = append(team[:i], team[i+1:]...)
		b.s.logger.Debug("released",
			slog.Int("day", b.day+1),
			slog.Int("hour", b.hour),
			slog.String("position", b.s.positions[position].Name),
			slog.String("name", released))
	}
	return team, nil
}

// commit applies the rest timer and hour accounting to a resolved team
func (b *dayBuild) commit(position int, team models.Team) error {
	for _, name := range team {
		if other, booked := b.booked[name]; booked && other != position {
			return &DoubleBookingError{
				Name:      name,
				Hour:      (b.day+1)*models.HoursInDay + b.hour,
				Positions: []int{other, position},
			}
		}
		b.booked[name] = position
		if b.night() {
			b.watch.Add(name)
		}
		b.s.roster.SetRestTimer(name, b.hour)
		b.s.roster.RecordAssignment(name, position, b.absHour(), true)
	}
	return nil
}
