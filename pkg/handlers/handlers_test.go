package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/ttr-scheduler/internal/logging"
	"github.com/arnavshah/ttr-scheduler/pkg/auth"
	"github.com/arnavshah/ttr-scheduler/pkg/database"
	"github.com/arnavshah/ttr-scheduler/pkg/metrics"
	"github.com/arnavshah/ttr-scheduler/pkg/models"
	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
)

type testServer struct {
	h      *Handler
	router *gin.Engine
	key    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB("", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	_, err = auth.EnsureAdminExists(db, "admin", "secret")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	h := &Handler{
		DB:       db,
		Auth:     auth.New("jwt-secret", "master-secret"),
		Defaults: scheduler.DefaultConfig(),
		Metrics:  metrics.NewPrometheus(reg, ""),
		Logger:   logging.Discard(),
		Version:  "test",
	}
	return &testServer{h: h, router: NewRouter(h, reg), key: h.Auth.GenerateHMACKey("ops")}
}

func (s *testServer) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// shiftPlan has one single-seat position swapped every six hours
func shiftPlan(people int) models.Plan {
	pos := models.PositionConfig{
		Name:      "Gate",
		Actions:   make([]models.Action, models.HoursInDay),
		TeamSizes: make([]int, models.HoursInDay),
	}
	for h := 0; h < models.HoursInDay; h++ {
		pos.TeamSizes[h] = 1
		if h%6 == 0 {
			pos.Actions[h] = models.ActionSwap
		}
	}
	plan := models.Plan{PriorDate: "2024-03-01", Positions: []models.PositionConfig{pos}}
	for i := 0; i < people; i++ {
		plan.People = append(plan.People, models.PersonSpec{Name: string(rune('a' + i))})
	}
	return plan
}

func intp(v int) *int { return &v }

func TestIndex(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test")
}

func TestScheduleJSON(t *testing.T) {
	s := newTestServer(t)
	req := models.ScheduleRequest{Plan: shiftPlan(8), Settings: &models.SettingsOverride{Days: intp(2)}}

	w := s.do(t, http.MethodPost, "/api/schedule", s.key, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScheduleResponse
	decode(t, w, &resp)
	assert.True(t, resp.Verified)
	assert.Equal(t, []string{"Gate"}, resp.Positions)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2024-03-02", resp.Days[0].Name)
	assert.Equal(t, "2024-03-03", resp.Days[1].Name)
	assert.Len(t, resp.Fingerprint, 16)
	for _, day := range resp.Days {
		require.Len(t, day.Hours, 24)
		for _, hour := range day.Hours {
			assert.Len(t, hour[0], 1)
		}
	}

	// same seed, same schedule
	again := s.do(t, http.MethodPost, "/api/schedule", s.key, req)
	var second models.ScheduleResponse
	decode(t, again, &second)
	assert.Equal(t, resp.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, resp.RunID, second.RunID)

	var usage []database.APIUsage
	require.NoError(t, s.h.DB.Find(&usage).Error)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].RequestCount)
	assert.Equal(t, 96, usage[0].HoursPlanned)

	runs, err := database.RecentRuns(s.h.DB, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, metrics.StatusOK, runs[0].Status)
	assert.Equal(t, resp.Fingerprint, runs[0].Fingerprint)
}

func TestScheduleJSON_Infeasible(t *testing.T) {
	s := newTestServer(t)
	plan := shiftPlan(1)
	for h := range plan.Positions[0].TeamSizes {
		plan.Positions[0].TeamSizes[h] = 2
	}

	w := s.do(t, http.MethodPost, "/api/schedule", s.key, models.ScheduleRequest{Plan: plan})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "infeasible", resp.Kind)
	assert.NotEmpty(t, resp.RunID)

	runs, err := database.RecentRuns(s.h.DB, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, metrics.StatusFailed, runs[0].Status)
	assert.Equal(t, "infeasible", runs[0].ErrorKind)
}

func TestScheduleJSON_BadSettings(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/schedule", s.key,
		models.ScheduleRequest{Plan: shiftPlan(8), Settings: &models.SettingsOverride{Days: intp(40)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"config"`)

	w = s.do(t, http.MethodPost, "/api/schedule", s.key, models.ScheduleRequest{Plan: models.Plan{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"config"`)
}

func TestAPIKeyMiddleware(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/usage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged := auth.New("jwt-secret", "other").GenerateHMACKey("ops")
	w = s.do(t, http.MethodGet, "/api/usage", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/usage", s.key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key_name":"ops"`)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.h.DB.Create(&database.APIKey{Key: s.key, Name: "ops", RateLimit: 1}).Error)

	req := models.ScheduleRequest{Plan: shiftPlan(8)}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/schedule", s.key, req).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/schedule", s.key, req).Code)
}

func TestVerifyEndpoint(t *testing.T) {
	s := newTestServer(t)

	day := models.EmptyDay(1)
	day[10][0] = models.Team{"a"}
	day[12][0] = models.Team{"a"}
	w := s.do(t, http.MethodPost, "/api/verify", s.key, models.VerifyRequest{People: []string{"a"}, Schedule: day})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decode(t, w, &resp)
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "rest_violation", resp["kind"])

	day[12][0] = models.Team{}
	day[15][0] = models.Team{"a"}
	w = s.do(t, http.MethodPost, "/api/verify", s.key, models.VerifyRequest{People: []string{"a"}, Schedule: day})
	decode(t, w, &resp)
	assert.Equal(t, true, resp["valid"])

	w = s.do(t, http.MethodPost, "/api/verify", s.key, models.VerifyRequest{People: []string{"a"}, Schedule: day[:5]})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t)

	plan := shiftPlan(3)
	plan.PriorDay = models.EmptyDay(1)
	plan.PriorDay[23][0] = models.Team{"zed"}
	w := s.do(t, http.MethodPost, "/api/validate", s.key, models.ScheduleRequest{Plan: plan})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	decode(t, w, &resp)
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, []any{"zed"}, resp["unknown_names"])

	plan.People = append(plan.People, models.PersonSpec{Name: "a"})
	w = s.do(t, http.MethodPost, "/api/validate", s.key, models.ScheduleRequest{Plan: plan})
	decode(t, w, &resp)
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "config", resp["kind"])
}

func TestScheduleCSV_YAMLUpload(t *testing.T) {
	s := newTestServer(t)

	plan := `prior_date: "2024-03-01"
people: [{name: a}, {name: b}, {name: c}, {name: d}, {name: e}, {name: f}, {name: g}, {name: h}]
positions:
  - name: Gate
    actions: [swap, ~, ~, ~, ~, ~, swap, ~, ~, ~, ~, ~, swap, ~, ~, ~, ~, ~, swap, ~, ~, ~, ~, ~]
    team_sizes: [1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1]
`
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("plan_file", "plan.yaml")
	require.NoError(t, err)
	_, err = part.Write([]byte(plan))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("seed", "7"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.key)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	decode(t, w, &resp)
	lines := strings.Split(strings.TrimSpace(resp["csv"]), "\n")
	assert.Equal(t, "day,time,position,team_size,people", lines[0])
	assert.Len(t, lines, 25)
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-02,00:00,Gate,1,"))
}

func TestScheduleCSV_RequiresFile(t *testing.T) {
	s := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.key)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]string
	decode(t, w, &login)
	token := login["access_token"]
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/keys", "", nil).Code)

	w = s.do(t, http.MethodPost, "/admin/keys", token, map[string]any{"name": "planner", "rate_limit": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	decode(t, w, &created)
	assert.True(t, strings.HasPrefix(created.Key, "planner."))

	w = s.do(t, http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pla...")
	assert.NotContains(t, w.Body.String(), created.Key)

	w = s.do(t, http.MethodPut, "/admin/keys/999", token, map[string]int{"rate_limit": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/schedule", created.Key,
		models.ScheduleRequest{Plan: shiftPlan(8)}).Code)

	w = s.do(t, http.MethodGet, "/admin/runs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Runs []database.RunLog `json:"runs"`
	}
	decode(t, w, &runs)
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, created.ID, runs.Runs[0].KeyID)

	w = s.do(t, http.MethodGet, "/admin/usage/"+jsonID(created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"request_count":1`)

	w = s.do(t, http.MethodDelete, "/admin/keys/"+jsonID(created.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/admin/keys/"+jsonID(created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// a revoked key stays out even though its signature still verifies
	for i := 0; i < 2; i++ {
		w = s.do(t, http.MethodPost, "/api/schedule", created.Key, models.ScheduleRequest{Plan: shiftPlan(8)})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	var count int64
	require.NoError(t, s.h.DB.Model(&database.APIKey{}).Where("name = ?", "planner").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/schedule", s.key, models.ScheduleRequest{Plan: shiftPlan(8)})

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rota_runs_total{status="ok"} 1`)
}

func TestApplySettings(t *testing.T) {
	seed := int64(9)
	cfg, err := ApplySettings(scheduler.DefaultConfig(), &models.SettingsOverride{TTRDay: intp(6), Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.TTRDay)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, scheduler.DefaultTTRNight, cfg.TTRNight)

	_, err = ApplySettings(scheduler.DefaultConfig(), &models.SettingsOverride{Shuffle: intp(0)})
	assert.ErrorIs(t, err, scheduler.ErrConfig)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
