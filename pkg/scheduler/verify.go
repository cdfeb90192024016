package scheduler

import (
	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// Verify walks a schedule that starts at 00:00 and checks that nobody on the
// roster came back before their rest was over, and that nobody staffed two
// positions in the same hour. Back-to-back hours are one continuing shift and
// are never a violation. Names outside names are ignored.
func Verify(schedule models.Schedule, names []string, cfg Config) error {
	lastSeen := make(map[string]int, len(names))
	for _, n := range names {
		lastSeen[n] = -1
	}

	for hour, teams := range schedule {
		seenThisHour := make(map[string]int)
		for position, team := range teams {
			for _, name := range team {
				last, known := lastSeen[name]
				if !known {
					continue
				}
				if other, dup := seenThisHour[name]; dup {
					return &DoubleBookingError{Name: name, Hour: hour, Positions: []int{other, position}}
				}
				seenThisHour[name] = position

				if last >= 0 && last != hour {
					gap := hour - last - 1
					required := cfg.RequiredRest(last)
					if gap > 0 && gap < required {
						return &RestViolationError{Name: name, From: last, To: hour, Gap: gap, Required: required}
					}
				}
				lastSeen[name] = hour
			}
		}
	}
	return nil
}
