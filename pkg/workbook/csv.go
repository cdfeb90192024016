package workbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
)

// WriteCSV exports generated days with one row per staffed position and hour
func WriteCSV(out io.Writer, positions []string, days []models.DaySchedule) error {
	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"day", "time", "position", "team_size", "people"}); err != nil {
		return err
	}
	for _, day := range days {
		for h, hour := range day.Hours {
			for p, team := range hour {
				if len(team) == 0 {
					continue
				}
				name := fmt.Sprintf("position %d", p+1)
				if p < len(positions) {
					name = positions[p]
				}
				if err := writer.Write([]string{
					day.Name,
					fmt.Sprintf("%02d:00", h%models.HoursInDay),
					name,
					fmt.Sprint(len(team)),
					strings.Join(team, ";"),
				}); err != nil {
					return err
				}
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
