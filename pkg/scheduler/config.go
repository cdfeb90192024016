package scheduler

import (
	"slices"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// Default engine tunables
const (
	DefaultTTRNight = 9
	DefaultTTRDay   = 4
	DefaultShuffle  = 3
	DefaultDays     = 1
	DefaultSeed     = 1
)

// Default night windows. Rest hours decide how long a shift must rest; watch
// hours decide who may not be picked twice in the same night.
var (
	DefaultNightRestHours  = []int{1, 2, 3, 4}
	DefaultNightWatchHours = []int{23, 0, 1, 2, 3, 4}
)

// Config holds the engine tunables. It is read-only once a Scheduler is built.
type Config struct {
	TTRNight           int
	TTRDay             int
	ShuffleCoefficient int
	DaysToPlan         int
	Seed               int64
	NightRestHours     []int
	NightWatchHours    []int
}

// DefaultConfig returns the stock tunables
func DefaultConfig() Config {
	return Config{
		TTRNight:           DefaultTTRNight,
		TTRDay:             DefaultTTRDay,
		ShuffleCoefficient: DefaultShuffle,
		DaysToPlan:         DefaultDays,
		Seed:               DefaultSeed,
		NightRestHours:     slices.Clone(DefaultNightRestHours),
		NightWatchHours:    slices.Clone(DefaultNightWatchHours),
	}
}

// Validate rejects tunables the engine cannot honour
func (c Config) Validate() error {
	if c.TTRNight < 1 {
		return NewConfigError("settings", "night rest must be at least 1 hour, got %d", c.TTRNight)
	}
	if c.TTRDay < 1 {
		return NewConfigError("settings", "day rest must be at least 1 hour, got %d", c.TTRDay)
	}
	if c.ShuffleCoefficient < 1 {
		return NewConfigError("settings", "shuffle coefficient must be at least 1, got %d", c.ShuffleCoefficient)
	}
	if c.DaysToPlan < 1 {
		return NewConfigError("settings", "days to plan must be at least 1, got %d", c.DaysToPlan)
	}
	for _, h := range append(slices.Clone(c.NightRestHours), c.NightWatchHours...) {
		if h < 0 || h >= models.HoursInDay {
			return NewConfigError("settings", "night hour %d outside 0-23", h)
		}
	}
	return nil
}

// IsNightRest reports whether a shift at hour earns the night rest. Hour may be
// absolute; only its time of day matters.
func (c Config) IsNightRest(hour int) bool {
	return slices.Contains(c.NightRestHours, timeOfDay(hour))
}

// IsNightWatch reports whether hour falls in the night-watch window
func (c Config) IsNightWatch(hour int) bool {
	return slices.Contains(c.NightWatchHours, timeOfDay(hour))
}

// IsEveningWatch reports whether hour is a night-watch hour in the second half
// of the day. Such hours open the night that runs on into the next morning.
func (c Config) IsEveningWatch(hour int) bool {
	return timeOfDay(hour) >= models.HoursInDay/2 && c.IsNightWatch(hour)
}

// RequiredRest is the minimum gap after a shift at hour
func (c Config) RequiredRest(hour int) int {
	if c.IsNightRest(hour) {
		return c.TTRNight
	}
	return c.TTRDay
}

func timeOfDay(hour int) int {
	h := hour % models.HoursInDay
	if h < 0 {
		h += models.HoursInDay
	}
	return h
}
