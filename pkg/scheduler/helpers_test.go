package scheduler

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// roster builds n people named p01, p02, ...
func roster(n int) []models.PersonSpec {
	out := make([]models.PersonSpec, n)
	for i := range out {
		out[i] = models.PersonSpec{Name: fmt.Sprintf("p%02d", i+1)}
	}
	return out
}

// rotating swaps a fixed-size team every `every` hours starting at midnight
func rotating(name string, size, every int) models.PositionConfig {
	pc := models.PositionConfig{
		Name:      name,
		Actions:   make([]models.Action, models.HoursInDay),
		TeamSizes: make([]int, models.HoursInDay),
	}
	for h := 0; h < models.HoursInDay; h++ {
		pc.TeamSizes[h] = size
		if h%every == 0 {
			pc.Actions[h] = models.ActionSwap
		}
	}
	return pc
}

// noNights disables both night windows
func noNights(cfg Config) Config {
	cfg.NightRestHours = nil
	cfg.NightWatchHours = nil
	return cfg
}

// busyPlan is a three-position plan with swaps, resizes and a roster large
// enough to stay feasible under the default rest rules.
func busyPlan() *models.Plan {
	tower := models.PositionConfig{
		Name:      "Tower",
		Actions:   make([]models.Action, models.HoursInDay),
		TeamSizes: make([]int, models.HoursInDay),
	}
	for h := 0; h < models.HoursInDay; h++ {
		switch {
		case h < 8:
			tower.TeamSizes[h] = 1
		case h < 18:
			tower.TeamSizes[h] = 2
		default:
			tower.TeamSizes[h] = 1
		}
	}
	tower.Actions[0] = models.ActionSwap
	tower.Actions[8] = models.ActionResize
	tower.Actions[12] = models.ActionSwap
	tower.Actions[18] = models.ActionResize

	return &models.Plan{
		People: roster(30),
		Positions: []models.PositionConfig{
			rotating("Gate", 2, 4),
			rotating("Patrol", 1, 3),
			tower,
		},
	}
}

// appearances maps each name to the schedule hours it was staffed
func appearances(s models.Schedule) map[string][]int {
	out := make(map[string][]int)
	for h, teams := range s {
		for _, team := range teams {
			for _, name := range team {
				out[name] = append(out[name], h)
			}
		}
	}
	return out
}
