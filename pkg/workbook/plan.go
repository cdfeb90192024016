package workbook

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// planFile is the on-disk layout of a YAML or JSON plan. JSON documents are
// valid YAML, so one decoder reads both.
type planFile struct {
	PriorDate string          `yaml:"prior_date"`
	FirstDay  string          `yaml:"first_day"`
	People    []personEntry   `yaml:"people"`
	Positions []positionEntry `yaml:"positions"`
	PriorDay  [][]teamCell    `yaml:"prior_day"`
}

type personEntry struct {
	Name    string    `yaml:"name"`
	TimeOff hoursCell `yaml:"time_off"`
	TimeOn  hoursCell `yaml:"time_on"`
}

type positionEntry struct {
	Name      string          `yaml:"name"`
	Actions   []models.Action `yaml:"actions"`
	TeamSizes []int           `yaml:"team_sizes"`
}

// hoursCell is either a list of absolute hours or a time-off string in the
// sheet format, resolved later against the first planned day
type hoursCell struct {
	Hours []int
	Text  string
}

func (c *hoursCell) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&c.Hours)
	case yaml.ScalarNode:
		return node.Decode(&c.Text)
	}
	return fmt.Errorf("line %d: expected hour list or time string", node.Line)
}

func (c hoursCell) resolve(first time.Time) ([]int, error) {
	if c.Text == "" {
		return c.Hours, nil
	}
	parsed, err := ParseHours(c.Text, first)
	if err != nil {
		return nil, err
	}
	return append(append([]int(nil), c.Hours...), parsed...), nil
}

// teamCell is a team written as a list of names or as a comma-joined cell
type teamCell models.Team

func (t *teamCell) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*t = teamCell(names)
		return nil
	case yaml.ScalarNode:
		*t = teamCell(models.ParseTeam(node.Value))
		return nil
	}
	return fmt.Errorf("line %d: expected team list or string", node.Line)
}

// LoadPlanFile reads a YAML or JSON plan from disk
func LoadPlanFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan %s: %w", path, err)
	}
	defer f.Close()
	return ReadPlan(f)
}

// ReadPlan decodes a YAML or JSON plan. Text time-off entries need the
// prior_date or first_day to anchor them.
func ReadPlan(r io.Reader) (*Source, error) {
	var pf planFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	src := &Source{
		Plan: &models.Plan{
			PriorDate: pf.PriorDate,
			People:    make([]models.PersonSpec, 0, len(pf.People)),
			Positions: make([]models.PositionConfig, 0, len(pf.Positions)),
		},
		FirstDay: pf.FirstDay,
	}

	var first time.Time
	for _, p := range pf.People {
		if p.TimeOff.Text == "" && p.TimeOn.Text == "" {
			continue
		}
		var err error
		if first, err = FirstDay(pf.PriorDate, pf.FirstDay); err != nil {
			return nil, fmt.Errorf("time strings need prior_date or first_day: %w", err)
		}
		break
	}

	for _, p := range pf.People {
		off, err := p.TimeOff.resolve(first)
		if err != nil {
			return nil, fmt.Errorf("person %q time_off: %w", p.Name, err)
		}
		on, err := p.TimeOn.resolve(first)
		if err != nil {
			return nil, fmt.Errorf("person %q time_on: %w", p.Name, err)
		}
		src.Plan.People = append(src.Plan.People, models.PersonSpec{Name: p.Name, TimeOff: off, TimeOn: on})
	}

	for _, pos := range pf.Positions {
		src.Plan.Positions = append(src.Plan.Positions, models.PositionConfig(pos))
	}

	if len(pf.PriorDay) > 0 {
		src.Plan.PriorDay = make(models.Schedule, len(pf.PriorDay))
		for h, hour := range pf.PriorDay {
			src.Plan.PriorDay[h] = make(models.ScheduleHour, len(hour))
			for p, team := range hour {
				if team == nil {
					team = teamCell{}
				}
				src.Plan.PriorDay[h][p] = models.Team(team)
			}
		}
	}
	return src, nil
}
