package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

func names(pool []Candidate) []string {
	out := make([]string, len(pool))
	for i, c := range pool {
		out[i] = c.Name
	}
	return out
}

func TestEligible_Filters(t *testing.T) {
	r := newTestRoster(t,
		models.PersonSpec{Name: "resting"},
		models.PersonSpec{Name: "off", TimeOff: []int{6}},
		models.PersonSpec{Name: "onlyLater", TimeOn: []int{20, 21}},
		models.PersonSpec{Name: "watcher"},
		models.PersonSpec{Name: "booked"},
		models.PersonSpec{Name: "free"},
	)
	r.SetRestTimer("resting", 5)

	pool, rejected := r.Eligible(EligibilityQuery{
		Hour:   6,
		Night:  true,
		Watch:  NightWatchSet{"watcher": {}},
		Booked: map[string]int{"booked": 1},
	})

	assert.Equal(t, []string{"free"}, names(pool))
	assert.Equal(t, Rejections{Resting: 1, TimeOff: 2, NightWatch: 1, Booked: 1}, rejected)
}

func TestEligible_WatchSetOnlyAtNight(t *testing.T) {
	r := newTestRoster(t, models.PersonSpec{Name: "a"}, models.PersonSpec{Name: "b"})

	pool, _ := r.Eligible(EligibilityQuery{Hour: 12, Night: false, Watch: NightWatchSet{"a": {}}})
	assert.Equal(t, []string{"a", "b"}, names(pool))
}

func TestEligible_ScenarioTimeOffPicksOther(t *testing.T) {
	r := newTestRoster(t,
		models.PersonSpec{Name: "X", TimeOff: []int{5, 6, 7}},
		models.PersonSpec{Name: "Y"},
	)
	pool, _ := r.Eligible(EligibilityQuery{Hour: 6})
	assert.Equal(t, []string{"Y"}, names(pool))
}

func TestEligible_AvoidsRepeatPosition(t *testing.T) {
	r := newTestRoster(t, models.PersonSpec{Name: "a"}, models.PersonSpec{Name: "b"}, models.PersonSpec{Name: "c"})
	r.RecordAssignment("a", 0, 0, false)
	r.RecordAssignment("b", 1, 0, false)

	pool, _ := r.Eligible(EligibilityQuery{Hour: 10, Position: 0})
	assert.Equal(t, []string{"b", "c"}, names(pool))
}

func TestEligible_RepeatFallbackKeepsLowestTier(t *testing.T) {
	r := newTestRoster(t, models.PersonSpec{Name: "a"}, models.PersonSpec{Name: "b"}, models.PersonSpec{Name: "c"})
	for _, n := range []string{"a", "b", "c"} {
		r.RecordAssignment(n, 0, 0, false)
	}
	r.people["a"].TTR = -5
	r.people["b"].TTR = -5
	r.people["c"].TTR = -1

	pool, _ := r.Eligible(EligibilityQuery{Hour: 10, Position: 0})
	assert.Equal(t, []string{"a", "b"}, names(pool))
	for _, c := range pool {
		assert.Equal(t, -5, c.TTR)
	}
}

func TestEligible_EmptyPool(t *testing.T) {
	r := newTestRoster(t, models.PersonSpec{Name: "a"})
	r.SetRestTimer("a", 3)

	pool, rejected := r.Eligible(EligibilityQuery{Hour: 4})
	assert.Empty(t, pool)
	assert.Equal(t, 1, rejected.Resting)
}
