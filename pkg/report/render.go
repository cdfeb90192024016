package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// ColumnColors cycle across position columns. The workbook writer uses the
// same palette for cell fills.
var ColumnColors = []string{"#FFC0CB", "#98FB98", "#FFFFE0", "#ADD8E6", "#E6E6FA"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// Schedule renders one day as a table with an hour column followed by one
// column per position
func Schedule(title string, positions []string, day models.Schedule) string {
	headers := append([]string{"Time"}, positions...)
	rows := make([][]string, 0, len(day))
	for h, hour := range day {
		row := make([]string, 0, len(hour)+1)
		row = append(row, fmt.Sprintf("%02d:00", h%models.HoursInDay))
		for _, team := range hour {
			row = append(row, team.String())
		}
		rows = append(rows, row)
	}

	t := newTable(headers...).Rows(rows...).StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 0 {
			return cellStyle
		}
		return cellStyle.Foreground(lipgloss.Color(ColumnColors[(col-1)%len(ColumnColors)]))
	})
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), t.Render())
}

// FairnessTable renders per-person totals. With graph set each row gets a
// bar of one star per hour served.
func FairnessTable(s models.FairnessSummary, graph bool) string {
	headers := []string{"Person", "Hours", "Night hours"}
	if graph {
		headers = append(headers, "")
	}
	rows := make([][]string, 0, len(s.People))
	for _, p := range s.People {
		row := []string{p.Name, fmt.Sprint(p.Hours), fmt.Sprint(p.NightHours)}
		if graph {
			row = append(row, strings.Repeat("*", p.Hours))
		}
		rows = append(rows, row)
	}

	t := newTable(headers...).Rows(rows...).StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})

	lines := []string{
		titleStyle.Render("Statistics"),
		t.Render(),
		fmt.Sprintf("mean %.2f h (night %.2f h), std dev %.2f, max %d, fairness %.1f",
			s.MeanHours, s.MeanNightHours, s.StdDev, s.MaxHours, s.Score),
	}
	if len(s.Idle) > 0 {
		lines = append(lines, noteStyle.Render("idle: "+strings.Join(s.Idle, ", ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Personal renders each person's hours for one day, people in name order
func Personal(title string, day models.Schedule) string {
	hours := PersonalHours(day)
	people := make([]string, 0, len(hours))
	for name := range hours {
		people = append(people, name)
	}
	sort.Strings(people)

	rows := make([][]string, 0, len(people))
	for _, name := range people {
		slots := make([]string, len(hours[name]))
		for i, h := range hours[name] {
			slots[i] = fmt.Sprintf("%02d:00", h)
		}
		rows = append(rows, []string{name, fmt.Sprint(len(slots)), strings.Join(slots, " ")})
	}

	t := newTable("Person", "Hours", "Shifts").Rows(rows...).StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), t.Render())
}

// Teams renders team compositions staffed more than once
func Teams(counts []models.TeamCount) string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		if c.Count < 2 {
			continue
		}
		rows = append(rows, []string{c.Team, fmt.Sprint(c.Count)})
	}
	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Teams"), noteStyle.Render("no team worked together more than once"))
	}
	t := newTable("Team", "Hours together").Rows(rows...).StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Teams"), t.Render())
}
