package models

// SettingsOverride lets a caller adjust engine tunables for one request.
// Nil fields keep the server defaults.
type SettingsOverride struct {
	TTRNight *int   `json:"ttr_night,omitempty"`
	TTRDay   *int   `json:"ttr_day,omitempty"`
	Shuffle  *int   `json:"shuffle,omitempty"`
	Days     *int   `json:"days,omitempty"`
	Seed     *int64 `json:"seed,omitempty"`
}

// ScheduleRequest is the body of the scheduling endpoint
type ScheduleRequest struct {
	Plan     Plan              `json:"plan"`
	FirstDay string            `json:"first_day,omitempty"`
	Settings *SettingsOverride `json:"settings,omitempty"`
}

// VerifyRequest is the body of the verification endpoint. Schedule must start
// at 00:00 and cover whole days.
type VerifyRequest struct {
	People   []string          `json:"people"`
	Schedule Schedule          `json:"schedule"`
	Settings *SettingsOverride `json:"settings,omitempty"`
}

// PersonStats is one row of the fairness report
type PersonStats struct {
	Name       string `json:"name"`
	Hours      int    `json:"hours"`
	NightHours int    `json:"night_hours"`
}

// TeamCount records how often a team composition was staffed
type TeamCount struct {
	Team  string `json:"team"`
	Count int    `json:"count"`
}

// FairnessSummary aggregates hours served across the roster
type FairnessSummary struct {
	People         []PersonStats `json:"people"`
	MeanHours      float64       `json:"mean_hours"`
	MeanNightHours float64       `json:"mean_night_hours"`
	StdDev         float64       `json:"std_dev"`
	Score          float64       `json:"fairness_score"`
	MaxHours       int           `json:"max_hours"`
	Idle           []string      `json:"idle,omitempty"`
}

// DaySchedule is one generated day
type DaySchedule struct {
	Name  string   `json:"name"`
	Hours Schedule `json:"hours"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	RunID       string          `json:"run_id"`
	Seed        int64           `json:"seed"`
	Positions   []string        `json:"positions"`
	Days        []DaySchedule   `json:"days"`
	Verified    bool            `json:"verified"`
	Fingerprint string          `json:"fingerprint"`
	Fairness    FairnessSummary `json:"fairness"`
	Roster      []Person        `json:"roster"`
}

// ErrorResponse carries a failed run's message and error kind
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	RunID string `json:"run_id,omitempty"`
}
