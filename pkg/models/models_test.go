package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	cases := map[string]Action{
		"":       ActionNone,
		"nan":    ActionNone,
		" Swap ": ActionSwap,
		"RESIZE": ActionResize,
		"none":   ActionNone,
	}
	for in, want := range cases {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAction("rotate")
	assert.Error(t, err)
}

func TestActionJSON(t *testing.T) {
	var actions []Action
	require.NoError(t, json.Unmarshal([]byte(`["swap", "", "resize"]`), &actions))
	assert.Equal(t, []Action{ActionSwap, ActionNone, ActionResize}, actions)

	out, err := json.Marshal(actions)
	require.NoError(t, err)
	assert.JSONEq(t, `["swap", "none", "resize"]`, string(out))
}

func TestPersonAvailable(t *testing.T) {
	p := Person{TimeOff: NewHourSet(3)}
	assert.True(t, p.Available(2))
	assert.False(t, p.Available(3))

	p = Person{TimeOn: NewHourSet(5, 6)}
	assert.True(t, p.Available(5))
	assert.False(t, p.Available(7))

	p.TTR = -4
	assert.Equal(t, 0, p.Rest())
}

func TestParseTeam(t *testing.T) {
	assert.Equal(t, Team{}, ParseTeam(""))
	assert.Equal(t, Team{}, ParseTeam("nan"))
	assert.Equal(t, Team{"alice", "bob"}, ParseTeam(" alice, bob,"))
	assert.Equal(t, "alice,bob", Team{"alice", "bob"}.String())
}

func TestTeamMarshalsEmptyAsArray(t *testing.T) {
	out, err := json.Marshal(ScheduleHour{nil, Team{"a"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[[], ["a"]]`, string(out))
}

func TestScheduleCloneAndFingerprint(t *testing.T) {
	day := EmptyDay(2)
	day[5][1] = Team{"a"}
	clone := day.Clone()
	assert.Equal(t, day.Fingerprint(), clone.Fingerprint())
	assert.Len(t, day.FingerprintHex(), 16)

	clone[5][1][0] = "b"
	assert.Equal(t, "a", day[5][1][0])
	assert.NotEqual(t, day.Fingerprint(), clone.Fingerprint())

	two := append(day.Clone(), clone...)
	assert.Equal(t, 2, two.Days())
	assert.Equal(t, Team{"b"}, two.Day(1)[5][1])
}

func TestDayNames(t *testing.T) {
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, DayNames("2024-02-29", "", 2))
	assert.Equal(t, []string{"2024-12-31", "2025-01-01"}, DayNames("", "2024-12-31", 2))
	assert.Equal(t, []string{"day-1", "day-2"}, DayNames("", "", 2))
	assert.Equal(t, []string{"Monday", "day-2"}, DayNames("", "Monday", 2))
}
