// Package workbook reads rota inputs from spreadsheets and plan files and
// writes generated days back out.
//
// A rota workbook has a "List of people" sheet (columns People, Time off and
// optionally Time on), one "Position N" sheet per position (columns Name,
// Action, Team size with one row per hour) and one sheet per committed day,
// named YYYY-MM-DD, with a Time column followed by a column per position.
package workbook

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
)

const (
	PeopleSheet    = "List of people"
	positionPrefix = "Position "

	colPeople   = "People"
	colTimeOff  = "Time off"
	colTimeOn   = "Time on"
	colName     = "Name"
	colAction   = "Action"
	colTeamSize = "Team size"
	colTime     = "Time"

	columnWidth = 30
)

// FillColors cycle across position columns of written sheets
var FillColors = []string{"FFC0CB", "98FB98", "FFFFE0", "ADD8E6", "E6E6FA"}

// Source is a loaded plan plus the name of the first day to plan, if the
// input fixed one
type Source struct {
	Plan     *models.Plan
	FirstDay string
}

// Workbook wraps an open spreadsheet
type Workbook struct {
	f    *excelize.File
	path string
}

// Open opens the workbook at path for reading and writing
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

// OpenReader reads a workbook from r. It can be written to a stream but not
// saved in place.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// New returns an empty workbook that will be saved to path
func New(path string) *Workbook {
	return &Workbook{f: excelize.NewFile(), path: path}
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets lists the sheet names in workbook order
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// Load reads people, positions and the committed day in priorSheet. Time-off
// cells are resolved against firstDay, or the day after priorSheet when
// firstDay is empty.
func (w *Workbook) Load(priorSheet, firstDay string) (*Source, error) {
	positions, err := w.positions()
	if err != nil {
		return nil, err
	}

	priorDate := ""
	if _, err := time.Parse(models.DateLayout, priorSheet); err == nil {
		priorDate = priorSheet
	}

	people, err := w.people(priorDate, firstDay)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(positions))
	for i, p := range positions {
		names[i] = p.Name
	}
	prior, err := w.ReadDay(priorSheet, names)
	if err != nil {
		return nil, err
	}

	return &Source{
		Plan: &models.Plan{
			PriorDate: priorDate,
			People:    people,
			Positions: positions,
			PriorDay:  prior,
		},
		FirstDay: firstDay,
	}, nil
}

func (w *Workbook) people(priorDate, firstDay string) ([]models.PersonSpec, error) {
	rows, err := w.rows(PeopleSheet)
	if err != nil {
		return nil, err
	}
	cols := columns(rows)
	nameCol, ok := cols[colPeople]
	if !ok {
		return nil, scheduler.NewConfigError(sheetContext(PeopleSheet), "column %q not found", colPeople)
	}
	offCol, hasOff := cols[colTimeOff]
	onCol, hasOn := cols[colTimeOn]

	var first time.Time
	var firstErr error
	firstResolved := false
	parse := func(cell string) ([]int, error) {
		if strings.TrimSpace(cell) == "" {
			return nil, nil
		}
		if !firstResolved {
			first, firstErr = FirstDay(priorDate, firstDay)
			firstResolved = true
		}
		if firstErr != nil {
			return nil, fmt.Errorf("time entries need a dated prior sheet or an explicit first day: %w", firstErr)
		}
		return ParseHours(cell, first)
	}

	var people []models.PersonSpec
	for i, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, nameCol))
		if name == "" {
			continue
		}
		spec := models.PersonSpec{Name: name}
		if hasOff {
			if spec.TimeOff, err = parse(cell(row, offCol)); err != nil {
				return nil, scheduler.NewConfigError(sheetContext(PeopleSheet), "row %d (%s) time off: %v", i+2, name, err)
			}
		}
		if hasOn {
			if spec.TimeOn, err = parse(cell(row, onCol)); err != nil {
				return nil, scheduler.NewConfigError(sheetContext(PeopleSheet), "row %d (%s) time on: %v", i+2, name, err)
			}
		}
		people = append(people, spec)
	}
	return people, nil
}

// positions reads "Position 1", "Position 2", ... until the next one is missing
func (w *Workbook) positions() ([]models.PositionConfig, error) {
	existing := make(map[string]bool)
	for _, s := range w.f.GetSheetList() {
		existing[s] = true
	}

	var out []models.PositionConfig
	for n := 1; existing[positionPrefix+strconv.Itoa(n)]; n++ {
		sheet := positionPrefix + strconv.Itoa(n)
		pos, err := w.position(sheet)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	if len(out) == 0 {
		return nil, scheduler.NewConfigError("workbook", "no %q sheets found", positionPrefix+"1")
	}
	return out, nil
}

func (w *Workbook) position(sheet string) (models.PositionConfig, error) {
	var pos models.PositionConfig
	rows, err := w.rows(sheet)
	if err != nil {
		return pos, err
	}
	cols := columns(rows)
	for _, c := range []string{colName, colAction, colTeamSize} {
		if _, ok := cols[c]; !ok {
			return pos, scheduler.NewConfigError(sheetContext(sheet), "column %q not found", c)
		}
	}

	data := rows[1:]
	if len(data) > 0 {
		pos.Name = strings.TrimSpace(cell(data[0], cols[colName]))
	}
	if pos.Name == "" {
		return pos, scheduler.NewConfigError(sheetContext(sheet), "position name missing under %q", colName)
	}

	// trailing rows with nothing in the hourly columns are formatting leftovers
	for len(data) > models.HoursInDay &&
		strings.TrimSpace(cell(data[len(data)-1], cols[colAction])) == "" &&
		strings.TrimSpace(cell(data[len(data)-1], cols[colTeamSize])) == "" {
		data = data[:len(data)-1]
	}
	if len(data) != models.HoursInDay {
		return pos, scheduler.NewConfigError(sheetContext(sheet), "%d hourly rows, expected %d", len(data), models.HoursInDay)
	}

	pos.Actions = make([]models.Action, models.HoursInDay)
	pos.TeamSizes = make([]int, models.HoursInDay)
	for h, row := range data {
		action, err := models.ParseAction(cell(row, cols[colAction]))
		if err != nil {
			return pos, scheduler.NewConfigError(sheetContext(sheet), "%02d:00: %v", h, err)
		}
		pos.Actions[h] = action

		sizeText := strings.TrimSpace(cell(row, cols[colTeamSize]))
		size, err := strconv.ParseFloat(sizeText, 64)
		if err != nil || size != float64(int(size)) {
			return pos, scheduler.NewConfigError(sheetContext(sheet), "%02d:00: team size %q is not a whole number", h, sizeText)
		}
		pos.TeamSizes[h] = int(size)
	}
	return pos, nil
}

// ReadDay reads a committed day laid out as written by WriteDay. Columns are
// matched to positions by header name.
func (w *Workbook) ReadDay(sheet string, positions []string) (models.Schedule, error) {
	rows, err := w.rows(sheet)
	if err != nil {
		return nil, err
	}
	cols := columns(rows)

	day := models.EmptyDay(len(positions))
	data := rows[1:]
	if len(data) < models.HoursInDay {
		return nil, scheduler.NewConfigError(sheetContext(sheet), "%d hourly rows, expected %d", len(data), models.HoursInDay)
	}
	for p, name := range positions {
		col, ok := cols[name]
		if !ok {
			return nil, scheduler.NewConfigError(sheetContext(sheet), "no column for position %q", name)
		}
		for h := 0; h < models.HoursInDay; h++ {
			day[h][p] = models.ParseTeam(cell(data[h], col))
		}
	}
	return day, nil
}

// WriteDay adds a sheet named name holding one generated day
func (w *Workbook) WriteDay(name string, positions []string, day models.Schedule) error {
	if idx, _ := w.f.GetSheetIndex(name); idx >= 0 {
		return fmt.Errorf("sheet %q already exists", name)
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}

	header := append([]any{colTime}, toAny(positions)...)
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", name, err)
	}
	for h, hour := range day {
		row := make([]any, 0, len(hour)+1)
		row = append(row, fmt.Sprintf("%02d:00", h%models.HoursInDay))
		for _, team := range hour {
			row = append(row, team.String())
		}
		cellName, err := excelize.CoordinatesToCellName(1, h+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(name, cellName, &row); err != nil {
			return fmt.Errorf("write %02d:00 of %q: %w", h, name, err)
		}
	}
	return w.style(name, len(positions), len(day))
}

func (w *Workbook) style(sheet string, positions, hours int) error {
	lastCol, err := excelize.ColumnNumberToName(positions + 1)
	if err != nil {
		return err
	}
	if err := w.f.SetColWidth(sheet, "A", lastCol, columnWidth); err != nil {
		return err
	}

	bold, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for p := 0; p < positions; p++ {
		fill, err := w.f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{FillColors[p%len(FillColors)]}},
		})
		if err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(p + 2)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, hours+1), fill); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook back to the path it was opened from
func (w *Workbook) Save() error {
	if w.path == "" {
		return fmt.Errorf("workbook was not opened from a file")
	}
	if err := w.f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

// WriteTo streams the workbook as xlsx
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

func (w *Workbook) rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, scheduler.NewConfigError(sheetContext(sheet), "cannot read sheet: %v", err)
	}
	if len(rows) == 0 {
		return nil, scheduler.NewConfigError(sheetContext(sheet), "sheet is empty")
	}
	return rows, nil
}

func columns(rows [][]string) map[string]int {
	cols := make(map[string]int)
	for i, h := range rows[0] {
		if h = strings.TrimSpace(h); h != "" {
			cols[h] = i
		}
	}
	return cols
}

// cell returns row[i], or "" where the sheet row is short
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func sheetContext(sheet string) string {
	return fmt.Sprintf("sheet %q", sheet)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
