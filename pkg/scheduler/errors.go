package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error the engine returns matches exactly one of these
// through errors.Is.
var (
	// ErrInfeasible is returned when no rested, available person can fill a slot.
	ErrInfeasible = errors.New("infeasible schedule")

	// ErrConfig is returned for malformed or contradictory configuration.
	ErrConfig = errors.New("configuration error")

	// ErrInvariant is returned when a pick breaks an engine invariant.
	ErrInvariant = errors.New("internal invariant violated")

	// ErrRestViolation is returned by the verifier when a rest gap is too short.
	ErrRestViolation = errors.New("rest violation")
)

// Kind names the error kind of err for logs, metrics and API responses
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInfeasible):
		return "infeasible"
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	case errors.Is(err, ErrRestViolation):
		return "rest_violation"
	}
	return "internal"
}

// Slot identifies an hour and position in a run
type Slot struct {
	Day      int
	Hour     int
	Position string
}

func (s Slot) String() string {
	return fmt.Sprintf("day %d %02d:00, position %q", s.Day+1, s.Hour, s.Position)
}

// Rejections counts why roster members were left out of an eligible pool
type Rejections struct {
	Resting    int
	TimeOff    int
	NightWatch int
	Booked     int
}

func (r Rejections) String() string {
	return fmt.Sprintf("resting=%d, unavailable=%d, night watch=%d, already staffed=%d",
		r.Resting, r.TimeOff, r.NightWatch, r.Booked)
}

// InfeasibleError reports a slot that could not be filled
type InfeasibleError struct {
	Slot
	TeamSize int
	Filled   int
	Rejected Rejections
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("no rested, available person at %s for slot %d of %d (%s)",
		e.Slot, e.Filled+1, e.TeamSize, e.Rejected)
}

// Is matches ErrInfeasible
func (e *InfeasibleError) Is(target error) bool { return target == ErrInfeasible }

// ConfigError reports bad input with the sheet or position it came from
type ConfigError struct {
	Context string
	Msg     string
	Err     error
}

// NewConfigError builds a ConfigError with a formatted message
func NewConfigError(context, format string, args ...any) *ConfigError {
	return &ConfigError{Context: context, Msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Context == "" {
		return msg
	}
	return e.Context + ": " + msg
}

// Unwrap exposes the underlying cause
func (e *ConfigError) Unwrap() error { return e.Err }

// Is matches ErrConfig
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// InvariantError reports a pick that the eligibility filter should never have allowed
type InvariantError struct {
	Slot
	Name string
	Rule string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Rule, e.Slot, e.Name)
}

// Is matches ErrInvariant
func (e *InvariantError) Is(target error) bool { return target == ErrInvariant }

// RestViolationError reports two appearances too close together
type RestViolationError struct {
	Name     string
	From     int
	To       int
	Gap      int
	Required int
}

func (e *RestViolationError) Error() string {
	return fmt.Sprintf("%s did not get the %d hour rest: served at %s, then at %s (gap %d)",
		e.Name, e.Required, hourLabel(e.From), hourLabel(e.To), e.Gap)
}

// Is matches ErrRestViolation
func (e *RestViolationError) Is(target error) bool { return target == ErrRestViolation }

// DoubleBookingError reports a name staffed in several positions in the same hour
type DoubleBookingError struct {
	Name      string
	Hour      int
	Positions []int
}

func (e *DoubleBookingError) Error() string {
	pos := make([]string, len(e.Positions))
	for i, p := range e.Positions {
		pos[i] = fmt.Sprintf("%d", p+1)
	}
	return fmt.Sprintf("%s is staffed in positions %s at %s", e.Name, strings.Join(pos, ", "), hourLabel(e.Hour))
}

// Is matches ErrInvariant
func (e *DoubleBookingError) Is(target error) bool { return target == ErrInvariant }

// hourLabel formats a schedule-relative hour as "day N HH:00"
func hourLabel(hour int) string {
	return fmt.Sprintf("day %d %02d:00", hour/24, hour%24)
}
