package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// Scheduler builds rest-constrained rotas one day at a time
type Scheduler struct {
	cfg       Config
	positions []models.PositionConfig
	prior     models.Schedule
	roster    *Roster
	rng       *rand.Rand
	selector  *Selector
	logger    *slog.Logger
	runID     string
}

// Option customizes a Scheduler
type Option func(*Scheduler)

// WithLogger sets the logger used for run progress
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRand replaces the random source seeded from Config.Seed
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithRunID sets the identifier reported in logs and results
func WithRunID(id string) Option {
	return func(s *Scheduler) {
		if id != "" {
			s.runID = id
		}
	}
}

// New validates the plan and prepares a scheduler for it
func New(cfg Config, plan *models.Plan, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, NewConfigError("plan", "plan is required")
	}
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}
	roster, err := NewRoster(cfg, plan.People)
	if err != nil {
		return nil, err
	}

	prior := plan.PriorDay
	if len(prior) == 0 {
		prior = models.EmptyDay(len(plan.Positions))
	}

	s := &Scheduler{
		cfg:       cfg,
		positions: plan.Positions,
		prior:     prior.Clone(),
		roster:    roster,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.selector = NewSelector(s.rng, cfg.ShuffleCoefficient)
	return s, nil
}

// ValidatePlan checks the shape of a plan without building anything
func ValidatePlan(plan *models.Plan) error {
	if len(plan.People) == 0 {
		return NewConfigError("people", "roster is empty")
	}
	if len(plan.Positions) == 0 {
		return NewConfigError("positions", "at least one position is required")
	}
	seen := make(map[string]bool, len(plan.People))
	for _, p := range plan.People {
		if seen[p.Name] {
			return NewConfigError("people", "duplicate name %q", p.Name)
		}
		seen[p.Name] = true
	}
	for i := range plan.Positions {
		pc := &plan.Positions[i]
		if err := pc.Validate(); err != nil {
			return &ConfigError{Context: fmt.Sprintf("position %d (%s)", i+1, pc.Name), Err: err}
		}
	}
	if len(plan.PriorDay) == 0 {
		return nil
	}
	if len(plan.PriorDay) != models.HoursInDay {
		return NewConfigError("prior schedule", "has %d hours, expected %d", len(plan.PriorDay), models.HoursInDay)
	}
	for h, hour := range plan.PriorDay {
		if len(hour) != len(plan.Positions) {
			return NewConfigError("prior schedule",
				"%02d:00 has %d teams, expected %d", h, len(hour), len(plan.Positions))
		}
	}
	return nil
}

// Roster exposes the live roster state
func (s *Scheduler) Roster() *Roster {
	return s.roster
}

// Config returns the tunables the scheduler was built with
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Replay runs a committed day through the roster so the timers reflect it,
// and returns the people who served during its evening watch hours, the part
// of the night that continues into the next day. Names not on the roster are
// skipped.
func (s *Scheduler) Replay(day models.Schedule) NightWatchSet {
	watch := make(NightWatchSet)
	for hour, teams := range day {
		for position, team := range teams {
			for _, name := range team {
				if !s.roster.Has(name) {
					continue
				}
				s.roster.SetRestTimer(name, hour)
				s.roster.RecordAssignment(name, position, hour, false)
				if s.cfg.IsEveningWatch(hour) {
					watch.Add(name)
				}
			}
		}
		s.roster.DecrementAll()
	}
	return watch
}

// BuildDay plans day (zero based) following prior, the day before it. watch is
// the night-watch set left by replaying prior. It is extended in place through
// the morning watch hours; the first evening watch hour starts a new night with
// an empty set.
func (s *Scheduler) BuildDay(day int, prior models.Schedule, watch NightWatchSet) (models.Schedule, error) {
	if len(prior) != models.HoursInDay {
		return nil, NewConfigError("prior schedule", "has %d hours, expected %d", len(prior), models.HoursInDay)
	}
	if watch == nil {
		watch = make(NightWatchSet)
	}

	b := &dayBuild{s: s, day: day, watch: watch}
	teams := make([]models.Team, len(s.positions))
	copy(teams, prior[models.HoursInDay-1])

	out := make(models.Schedule, models.HoursInDay)
	evening := false
	for hour := 0; hour < models.HoursInDay; hour++ {
		b.hour = hour
		b.booked = make(map[string]int)
		if !evening && s.cfg.IsEveningWatch(hour) {
			evening = true
			b.watch = make(NightWatchSet)
		}
		out[hour] = make(models.ScheduleHour, len(s.positions))

		for position := range s.positions {
			team, err := b.assign(position, teams[position])
			if err != nil {
				return nil, err
			}
			if err := b.commit(position, team); err != nil {
				return nil, err
			}
			out[hour][position] = team
			teams[position] = team
		}
		s.roster.DecrementAll()
	}
	return out, nil
}

// Result is the outcome of a run
type Result struct {
	RunID    string
	Seed     int64
	Prior    models.Schedule
	Days     []models.Schedule
	Roster   []models.Person
	Duration time.Duration
}

// Generated concatenates the planned days
func (r *Result) Generated() models.Schedule {
	var out models.Schedule
	for _, d := range r.Days {
		out = append(out, d...)
	}
	return out
}

// Full is the prior day followed by the planned days
func (r *Result) Full() models.Schedule {
	out := append(models.Schedule{}, r.Prior...)
	return append(out, r.Generated()...)
}

// Run plans DaysToPlan days, each following the one before, and verifies the
// result. A failed run still returns the days built before the failure.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: s.runID, Seed: s.cfg.Seed, Prior: s.prior}
	s.logger.Info("run started",
		slog.String("run_id", s.runID),
		slog.Int64("seed", s.cfg.Seed),
		slog.Int("days", s.cfg.DaysToPlan),
		slog.Int("people", len(s.roster.names)),
		slog.Int("positions", len(s.positions)))

	prior := s.prior
	for day := 0; day < s.cfg.DaysToPlan; day++ {
		if err := ctx.Err(); err != nil {
			return s.finish(res, start), err
		}
		watch := s.Replay(prior)
		built, err := s.BuildDay(day, prior, watch)
		if err != nil {
			s.logger.Error("day failed", slog.String("run_id", s.runID), slog.Int("day", day+1), slog.Any("error", err))
			return s.finish(res, start), err
		}
		res.Days = append(res.Days, built)
		prior = built
	}

	if err := Verify(res.Full(), s.roster.Names(), s.cfg); err != nil {
		s.logger.Error("verification failed", slog.String("run_id", s.runID), slog.Any("error", err))
		return s.finish(res, start), err
	}
	s.finish(res, start)
	s.logger.Info("run finished",
		slog.String("run_id", s.runID),
		slog.String("fingerprint", res.Generated().FingerprintHex()),
		slog.Duration("took", res.Duration))
	return res, nil
}

func (s *Scheduler) finish(res *Result, start time.Time) *Result {
	res.Roster = s.roster.Snapshot()
	res.Duration = time.Since(start)
	return res
}
