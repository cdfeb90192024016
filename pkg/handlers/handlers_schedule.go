package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/ttr-scheduler/internal/config"
	"github.com/arnavshah/ttr-scheduler/pkg/database"
	"github.com/arnavshah/ttr-scheduler/pkg/metrics"
	"github.com/arnavshah/ttr-scheduler/pkg/models"
	"github.com/arnavshah/ttr-scheduler/pkg/report"
	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
	"github.com/arnavshah/ttr-scheduler/pkg/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApplySettings layers per-request overrides on top of the server defaults
func ApplySettings(base scheduler.Config, o *models.SettingsOverride) (scheduler.Config, error) {
	cfg := base
	if o != nil {
		if o.TTRNight != nil {
			cfg.TTRNight = *o.TTRNight
		}
		if o.TTRDay != nil {
			cfg.TTRDay = *o.TTRDay
		}
		if o.Shuffle != nil {
			cfg.ShuffleCoefficient = *o.Shuffle
		}
		if o.Days != nil {
			cfg.DaysToPlan = *o.Days
		}
		if o.Seed != nil {
			cfg.Seed = *o.Seed
		}
	}
	if cfg.DaysToPlan > config.MaxDaysPerRequest {
		return cfg, scheduler.NewConfigError("settings", "at most %d days per request, got %d", config.MaxDaysPerRequest, cfg.DaysToPlan)
	}
	return cfg, cfg.Validate()
}

// generate runs the engine for one request and records usage, the run log
// and metrics. On failure it writes the error response itself.
func (h *Handler) generate(c *gin.Context, src *workbook.Source, override *models.SettingsOverride) (*models.ScheduleResponse, bool) {
	plan := src.Plan
	cfg, err := ApplySettings(h.Defaults, override)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Kind: scheduler.Kind(err)})
		return nil, false
	}

	s, err := scheduler.New(cfg, plan, scheduler.WithLogger(h.logger()))
	if err != nil {
		h.fail(c, "", cfg, plan, 0, err)
		return nil, false
	}

	start := time.Now()
	res, err := s.Run(c.Request.Context())
	if err != nil {
		h.fail(c, res.RunID, cfg, plan, time.Since(start), err)
		return nil, false
	}

	names := models.DayNames(plan.PriorDate, src.FirstDay, len(res.Days))
	days := make([]models.DaySchedule, len(res.Days))
	for i, d := range res.Days {
		days[i] = models.DaySchedule{Name: names[i], Hours: d}
	}

	planned := res.Generated()
	fairness := report.Fairness(planned, plan.Names(), cfg)
	resp := &models.ScheduleResponse{
		RunID:       res.RunID,
		Seed:        res.Seed,
		Positions:   plan.PositionNames(),
		Days:        days,
		Verified:    true,
		Fingerprint: planned.FingerprintHex(),
		Fairness:    fairness,
		Roster:      res.Roster,
	}

	hours := staffedHours(planned)
	h.RecordUsage(c, database.UsageDelta{Positions: len(plan.Positions), People: len(plan.People), HoursPlanned: hours})
	h.recordRun(c, &database.RunLog{
		RunID:         res.RunID,
		Seed:          res.Seed,
		Days:          len(res.Days),
		People:        len(plan.People),
		Positions:     len(plan.Positions),
		Fingerprint:   resp.Fingerprint,
		FairnessScore: fairness.Score,
		StdDev:        fairness.StdDev,
		Status:        metrics.StatusOK,
		DurationMS:    res.Duration.Milliseconds(),
	})
	h.recorder().RecordRun(metrics.StatusOK, res.Duration.Seconds(), hours, fairness.StdDev)
	return resp, true
}

func (h *Handler) fail(c *gin.Context, runID string, cfg scheduler.Config, plan *models.Plan, took time.Duration, err error) {
	kind := scheduler.Kind(err)
	status := http.StatusUnprocessableEntity
	if kind == "internal" {
		status = http.StatusInternalServerError
	}

	h.logger().Warn("schedule request failed",
		slog.String("run_id", runID),
		slog.String("kind", kind),
		slog.Any("error", err))

	h.RecordUsage(c, database.UsageDelta{Positions: len(plan.Positions), People: len(plan.People)})
	if runID != "" {
		h.recordRun(c, &database.RunLog{
			RunID:      runID,
			Seed:       cfg.Seed,
			Days:       cfg.DaysToPlan,
			People:     len(plan.People),
			Positions:  len(plan.Positions),
			Status:     metrics.StatusFailed,
			ErrorKind:  kind,
			Error:      err.Error(),
			DurationMS: took.Milliseconds(),
		})
	}
	h.recorder().RecordRun(metrics.StatusFailed, took.Seconds(), 0, 0)
	h.recorder().RecordFailure(kind)

	c.JSON(status, models.ErrorResponse{Error: err.Error(), Kind: kind, RunID: runID})
}

func (h *Handler) recordRun(c *gin.Context, run *database.RunLog) {
	if raw, ok := c.Get("apiKey"); ok {
		run.KeyID = raw.(*database.APIKey).ID
	}
	if err := database.RecordRun(h.DB, run); err != nil {
		h.logger().Error("could not record run", slog.String("run_id", run.RunID), slog.Any("error", err))
	}
}

func staffedHours(s models.Schedule) int {
	total := 0
	for _, hour := range s {
		for _, team := range hour {
			total += len(team)
		}
	}
	return total
}

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, ok := h.generate(c, &workbook.Source{Plan: &req.Plan, FirstDay: req.FirstDay}, req.Settings)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out)
}

// ScheduleCSV handles plan file uploads. The plan_file field takes an xlsx
// workbook (with prior_sheet naming the committed day) or a YAML/JSON plan.
// The generated days come back as CSV, or as the workbook with the new
// sheets added when format=xlsx and the upload was a workbook.
func (h *Handler) ScheduleCSV(c *gin.Context) {
	planFile, err := c.FormFile("plan_file")
	if err != nil || planFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_file is required"})
		return
	}
	override, err := formSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := planFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open plan file"})
		return
	}
	defer f.Close()

	firstDay := c.PostForm("first_day")
	var src *workbook.Source
	var wb *workbook.Workbook
	switch strings.ToLower(filepath.Ext(planFile.Filename)) {
	case ".xlsx":
		wb, src, err = loadWorkbook(f, c.PostForm("prior_sheet"), firstDay)
		if wb != nil {
			defer wb.Close()
		}
	case ".yaml", ".yml", ".json":
		src, err = workbook.ReadPlan(f)
		if err == nil && firstDay != "" {
			src.FirstDay = firstDay
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan_file must be .xlsx, .yaml, .yml or .json"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Kind: scheduler.Kind(err)})
		return
	}

	out, ok := h.generate(c, src, override)
	if !ok {
		return
	}

	if c.PostForm("format") == "xlsx" && wb != nil {
		for _, day := range out.Days {
			if err := wb.WriteDay(day.Name, out.Positions, day.Hours); err != nil {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
		}
		var buf bytes.Buffer
		if _, err := wb.WriteTo(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not write workbook"})
			return
		}
		c.Header("X-Run-ID", out.RunID)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", planFile.Filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	var outCSV strings.Builder
	if err := workbook.WriteCSV(&outCSV, out.Positions, out.Days); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not export CSV"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":      out.RunID,
		"fingerprint": out.Fingerprint,
		"csv":         outCSV.String(),
	})
}

func loadWorkbook(f multipart.File, priorSheet, firstDay string) (*workbook.Workbook, *workbook.Source, error) {
	if priorSheet == "" {
		return nil, nil, scheduler.NewConfigError("request", "prior_sheet is required for workbook uploads")
	}
	wb, err := workbook.OpenReader(f)
	if err != nil {
		return nil, nil, err
	}
	src, err := wb.Load(priorSheet, firstDay)
	if err != nil {
		return wb, nil, err
	}
	return wb, src, nil
}

// formSettings reads optional ttr_night, ttr_day, shuffle, days and seed
// form fields
func formSettings(c *gin.Context) (*models.SettingsOverride, error) {
	o := &models.SettingsOverride{}
	ints := []struct {
		field string
		dst   **int
	}{
		{"ttr_night", &o.TTRNight},
		{"ttr_day", &o.TTRDay},
		{"shuffle", &o.Shuffle},
		{"days", &o.Days},
	}
	for _, f := range ints {
		v := c.PostForm(f.field)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.field, err)
		}
		*f.dst = &n
	}
	if v := c.PostForm("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		o.Seed = &n
	}
	return o, nil
}

// Verify checks a finished schedule for rest violations and double booking
func (h *Handler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := ApplySettings(h.Defaults, req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Kind: scheduler.Kind(err)})
		return
	}
	if len(req.Schedule) == 0 || len(req.Schedule)%models.HoursInDay != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("schedule must cover whole days, got %d hours", len(req.Schedule))})
		return
	}

	fairness := report.Fairness(req.Schedule, req.People, cfg)
	if err := scheduler.Verify(req.Schedule, req.People, cfg); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid":    false,
			"error":    err.Error(),
			"kind":     scheduler.Kind(err),
			"fairness": fairness,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"fingerprint": req.Schedule.FingerprintHex(),
		"fairness":    fairness,
	})
}
