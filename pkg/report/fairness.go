// Package report turns finished schedules into fairness figures and
// human-readable summaries. Nothing here feeds back into scheduling.
package report

import (
	"math"
	"sort"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
)

// Fairness counts hours served per roster member across schedule, which must
// start at 00:00. Names outside the roster are not counted.
func Fairness(schedule models.Schedule, names []string, cfg scheduler.Config) models.FairnessSummary {
	hours := make(map[string]int, len(names))
	nights := make(map[string]int, len(names))
	for _, n := range names {
		hours[n] = 0
		nights[n] = 0
	}

	for hour, teams := range schedule {
		night := cfg.IsNightRest(hour)
		for _, team := range teams {
			for _, name := range team {
				if _, ok := hours[name]; !ok {
					continue
				}
				hours[name]++
				if night {
					nights[name]++
				}
			}
		}
	}

	summary := models.FairnessSummary{People: make([]models.PersonStats, 0, len(names))}
	for _, n := range names {
		summary.People = append(summary.People, models.PersonStats{Name: n, Hours: hours[n], NightHours: nights[n]})
	}
	sort.Slice(summary.People, func(i, j int) bool { return summary.People[i].Name < summary.People[j].Name })
	fillStats(&summary)
	return summary
}

// FromRoster builds the summary from the hour totals kept by the engine
func FromRoster(people []models.Person) models.FairnessSummary {
	summary := models.FairnessSummary{People: make([]models.PersonStats, 0, len(people))}
	for _, p := range people {
		summary.People = append(summary.People, models.PersonStats{Name: p.Name, Hours: p.TotalHours, NightHours: p.NightHours})
	}
	sort.Slice(summary.People, func(i, j int) bool { return summary.People[i].Name < summary.People[j].Name })
	fillStats(&summary)
	return summary
}

// fillStats computes population mean and standard deviation, the max, the
// idle list and a 0-100 score where 100 means everyone served the same hours.
func fillStats(s *models.FairnessSummary) {
	s.Score = 100
	if len(s.People) == 0 {
		return
	}

	var sum, nightSum float64
	for _, p := range s.People {
		sum += float64(p.Hours)
		nightSum += float64(p.NightHours)
		if p.Hours > s.MaxHours {
			s.MaxHours = p.Hours
		}
		if p.Hours == 0 {
			s.Idle = append(s.Idle, p.Name)
		}
	}
	n := float64(len(s.People))
	s.MeanHours = sum / n
	s.MeanNightHours = nightSum / n

	var variance float64
	for _, p := range s.People {
		diff := float64(p.Hours) - s.MeanHours
		variance += diff * diff
	}
	s.StdDev = math.Sqrt(variance / n)

	if s.MeanHours == 0 {
		return
	}
	s.Score = math.Max(0, (1-s.StdDev/s.MeanHours)*100)
}

// TeamRecurrence counts how often each team composition was staffed, most
// frequent first. Member order does not matter; empty teams are skipped.
func TeamRecurrence(schedule models.Schedule) []models.TeamCount {
	counts := make(map[string]int)
	for _, teams := range schedule {
		for _, team := range teams {
			if len(team) == 0 {
				continue
			}
			members := append([]string(nil), team...)
			sort.Strings(members)
			counts[models.Team(members).String()]++
		}
	}

	out := make([]models.TeamCount, 0, len(counts))
	for team, c := range counts {
		out = append(out, models.TeamCount{Team: team, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// PersonalHours lists, per person, the hours of day they were staffed in a
// single day's schedule
func PersonalHours(day models.Schedule) map[string][]int {
	out := make(map[string][]int)
	for hour, teams := range day {
		for _, team := range teams {
			for _, name := range team {
				out[name] = append(out[name], hour%models.HoursInDay)
			}
		}
	}
	return out
}
