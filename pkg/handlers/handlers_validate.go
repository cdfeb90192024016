package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/ttr-scheduler/pkg/models"
	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
)

// ValidateInput checks a scheduling request without running it
func (h *Handler) ValidateInput(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	invalid := func(err error) {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
			"kind":  scheduler.Kind(err),
		})
	}

	if _, err := ApplySettings(h.Defaults, req.Settings); err != nil {
		invalid(err)
		return
	}
	if err := scheduler.ValidatePlan(&req.Plan); err != nil {
		invalid(err)
		return
	}
	if req.FirstDay == "" && req.Plan.PriorDate != "" {
		if _, err := models.NextDate(req.Plan.PriorDate); err != nil {
			invalid(scheduler.NewConfigError("prior_date", "%v", err))
			return
		}
	}

	// names in the prior day that are not on the roster are carried but never
	// rested or counted
	roster := make(map[string]bool, len(req.Plan.People))
	for _, p := range req.Plan.People {
		roster[p.Name] = true
	}
	unknown := []string{}
	seen := map[string]bool{}
	for _, hour := range req.Plan.PriorDay {
		for _, team := range hour {
			for _, name := range team {
				if !roster[name] && !seen[name] {
					seen[name] = true
					unknown = append(unknown, name)
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"people_count":    len(req.Plan.People),
			"position_count":  len(req.Plan.Positions),
			"prior_day_hours": len(req.Plan.PriorDay),
		},
		"unknown_names": unknown,
	})
}
