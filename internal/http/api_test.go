package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loadmap/internal/blob"
	"loadmap/internal/domain"
	"loadmap/internal/repository"
	"loadmap/internal/rules"
	"loadmap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	router  *Router
	plans   *repository.MemoryPlansRepo
	rooms   *repository.MemoryRoomsRepo
	jobs    *service.JobService
	metrics *Metrics
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tbl, err := rules.LoadFile("../../rules/asce7-22.yml")
	require.NoError(t, err)
	provider := rules.NewStaticProvider(tbl)
	logger := zap.NewNop()

	plansRepo := repository.NewMemoryPlansRepo()
	roomsRepo := repository.NewMemoryRoomsRepo()
	plans := service.NewPlanService(plansRepo, logger)
	rooms := service.NewRoomService(roomsRepo, plansRepo, provider, logger)
	files := service.NewFileService(blob.NewMemoryStore(), logger)
	jobs := service.NewJobService(repository.NewMemoryJobsRepo(), files, plans, rooms, logger)
	t.Cleanup(jobs.Close)

	metrics := NewMetrics()
	rooms.SetRecorder(metrics)

	router := NewRouter(metrics, logger)
	router.RegisterHealthRoutes(NewHealthHandler("LoadMap AI"))
	router.RegisterPlanRoutes(NewPlansHandler(plans, rooms, logger))
	router.RegisterRuleRoutes(NewRulesHandler(service.NewRuleService(provider), logger))
	router.RegisterFileRoutes(NewFilesHandler(files, logger))
	router.RegisterJobRoutes(NewJobsHandler(jobs, logger))
	router.RegisterMetricsRoute()

	return &testAPI{router: router, plans: plansRepo, rooms: roomsRepo, jobs: jobs, metrics: metrics}
}

// seedScenario plan p1 with BED 0.98, LIVING 0.95, MECH 0.92
func (a *testAPI) seedScenario(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := a.plans.CreatePlan(ctx, domain.Plan{ID: "p1", Name: "P1", Width: 10, Height: 10})
	require.NoError(t, err)
	require.NoError(t, a.rooms.CreateRooms(ctx, "p1", []domain.Room{
		{ID: "r1", RawLabel: "BED", Confidence: 0.98},
		{ID: "r2", RawLabel: "LIVING", Confidence: 0.95},
		{ID: "r3", RawLabel: "MECH", Confidence: 0.92},
	}))
}

func (a *testAPI) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int) ErrorBody {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	body := decode[ErrorBody](t, rr)
	assert.Equal(t, status, body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
	return body
}

func itemLabels(page service.RoomPage) []string {
	out := make([]string, 0, len(page.Items))
	for _, v := range page.Items {
		out = append(out, v.RawLabel)
	}
	return out
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Welcome to LoadMap AI", decode[map[string]string](t, rr)["message"])

	rr = a.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", decode[map[string]string](t, rr)["status"])

	assertError(t, a.do(t, http.MethodGet, "/nowhere", nil), http.StatusNotFound)
	assertError(t, a.do(t, http.MethodPost, "/health", nil), http.StatusMethodNotAllowed)
}

func TestListRooms_ScenarioA(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	rr := a.do(t, http.MethodGet, "/plans/p1/rooms", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[service.RoomPage](t, rr)

	require.Len(t, page.Items, 3)
	assert.False(t, page.Items[0].NeedsReview)
	assert.False(t, page.Items[1].NeedsReview)
	assert.True(t, page.Items[2].NeedsReview)
	assert.Nil(t, page.Items[2].Category)
}

func TestListRooms_ScenarioB(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	page := decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?require_review=true", nil))
	assert.Equal(t, []string{"MECH"}, itemLabels(page))
	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 1, page.Meta.Count)
}

func TestListRooms_ScenarioC(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	page := decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?sort_by=confidence&sort_order=desc&limit=1&offset=0", nil))
	assert.Equal(t, []string{"BED"}, itemLabels(page))
	require.NotNil(t, page.Meta.NextOffset)
	assert.Equal(t, 1, *page.Meta.NextOffset)
}

func TestListRooms_ScenarioD(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.plans.CreatePlan(context.Background(), domain.Plan{ID: "empty", Name: "Empty", Width: 1, Height: 1})
	require.NoError(t, err)

	body := assertError(t, a.do(t, http.MethodGet, "/plans/empty/rooms", nil), http.StatusNotFound)
	assert.Equal(t, "No rooms found for this plan", body.Error.Message)

	assertError(t, a.do(t, http.MethodGet, "/plans/ghost/rooms", nil), http.StatusNotFound)
}

func TestListRooms_ScenarioE(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	page := decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?category=", nil))
	assert.Equal(t, []string{"MECH"}, itemLabels(page))
	require.NotNil(t, page.Meta.Filters.Category)
	assert.Equal(t, "", *page.Meta.Filters.Category)

	page = decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?category=RESIDENTIALLIVING", nil))
	assert.Equal(t, []string{"LIVING"}, itemLabels(page))
}

func TestListRooms_FilterAndSort(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	page := decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?q=e&sort_by=raw_label&sort_order=asc", nil))
	assert.Equal(t, []string{"BED", "MECH"}, itemLabels(page))
	assert.Equal(t, service.SortByRawLabel, page.Meta.SortBy)
	assert.Equal(t, service.SortAsc, page.Meta.SortOrder)
	require.NotNil(t, page.Meta.Filters.Q)
	assert.Equal(t, "e", *page.Meta.Filters.Q)

	page = decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?min_confidence=0.95&offset=5", nil))
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.Reviewed)
	assert.Nil(t, page.Meta.NextOffset)
}

func TestListRooms_ValidationErrors(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	for _, query := range []string{
		"min_confidence=1.5",
		"min_confidence=-0.1",
		"min_confidence=abc",
		"min_confidence=NaN",
		"require_review=maybe",
		"limit=0",
		"limit=101",
		"limit=ten",
		"offset=-1",
		"sort_by=area",
		"sort_order=sideways",
	} {
		t.Run(query, func(t *testing.T) {
			assertError(t, a.do(t, http.MethodGet, "/plans/p1/rooms?"+query, nil), http.StatusBadRequest)
		})
	}
}

func TestListRooms_OffsetAtTopOfIntRange(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	for _, offset := range []string{"9223372036854775807", "9223372036854775758"} {
		t.Run(offset, func(t *testing.T) {
			rr := a.do(t, http.MethodGet, "/plans/p1/rooms?offset="+offset, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			raw := decode[map[string]json.RawMessage](t, rr)
			assert.JSONEq(t, "[]", string(raw["items"]))

			page := decode[service.RoomPage](t, rr)
			assert.Equal(t, 0, page.Meta.Count)
			assert.Equal(t, 3, page.Meta.Total)
			assert.Nil(t, page.Meta.NextOffset)
		})
	}

	// one past the int range does not parse
	assertError(t, a.do(t, http.MethodGet, "/plans/p1/rooms?offset=9223372036854775808", nil), http.StatusBadRequest)
}

func TestListRooms_ValidationBeforeLookup(t *testing.T) {
	a := newTestAPI(t)
	assertError(t, a.do(t, http.MethodGet, "/plans/ghost/rooms?limit=0", nil), http.StatusBadRequest)
}

func TestPlans(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/plans", strings.NewReader(`{"name":"Level 1","width":120,"height":80}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	plan := decode[domain.Plan](t, rr)
	assert.Equal(t, "level-1", plan.ID)

	assertError(t, a.do(t, http.MethodPost, "/plans", strings.NewReader(`{"name":"level 1","width":1,"height":1}`)), http.StatusConflict)
	assertError(t, a.do(t, http.MethodPost, "/plans", strings.NewReader(`{"name":"x","width":0,"height":1}`)), http.StatusBadRequest)
	assertError(t, a.do(t, http.MethodPost, "/plans", strings.NewReader(`{"name":"x","width":1,"height":1,"depth":3}`)), http.StatusBadRequest)
	assertError(t, a.do(t, http.MethodPost, "/plans", strings.NewReader(``)), http.StatusBadRequest)

	rr = a.do(t, http.MethodGet, "/plans/level-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Level 1", decode[domain.Plan](t, rr).Name)

	body := assertError(t, a.do(t, http.MethodGet, "/plans/nope", nil), http.StatusNotFound)
	assert.Equal(t, "Plan not found", body.Error.Message)

	list := decode[[]domain.Plan](t, a.do(t, http.MethodGet, "/plans", nil))
	assert.Len(t, list, 1)

	assertError(t, a.do(t, http.MethodDelete, "/plans/level-1", nil), http.StatusMethodNotAllowed)
	assertError(t, a.do(t, http.MethodGet, "/plans/level-1/doors", nil), http.StatusNotFound)
}

func TestCreateRooms(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	rr := a.do(t, http.MethodPost, "/plans/p1/rooms", strings.NewReader(`{"rooms":[{"raw_label":"OFC","confidence":0.91}]}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[struct {
		Items []domain.Room `json:"items"`
	}](t, rr)
	require.Len(t, created.Items, 1)
	assert.NotEmpty(t, created.Items[0].ID)

	page := decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms", nil))
	assert.Equal(t, 4, page.Meta.Total)

	assertError(t, a.do(t, http.MethodPost, "/plans/p1/rooms", strings.NewReader(`{"rooms":[{"raw_label":"OFC","confidence":2}]}`)), http.StatusBadRequest)
	assertError(t, a.do(t, http.MethodPost, "/plans/ghost/rooms", strings.NewReader(`{"rooms":[{"raw_label":"OFC","confidence":0.5}]}`)), http.StatusNotFound)
}

func TestRulesMap(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/rules/map?label=bed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	m := decode[service.LabelMapping](t, rr)
	assert.Equal(t, "bed", m.InputLabel)
	require.NotNil(t, m.Mapping)
	assert.Equal(t, 30.0, *m.Mapping.UniformPSF)

	raw := decode[map[string]any](t, a.do(t, http.MethodGet, "/rules/map?label=MECH", nil))
	assert.Equal(t, "MECH", raw["input_label"])
	assert.Contains(t, raw, "mapping")
	assert.Nil(t, raw["mapping"])

	assertError(t, a.do(t, http.MethodGet, "/rules/map", nil), http.StatusBadRequest)
	assertError(t, a.do(t, http.MethodPost, "/rules/map?label=BED", nil), http.StatusMethodNotAllowed)

	rr = a.do(t, http.MethodGet, "/rules", nil)
	stats := decode[service.RuleStats](t, rr)
	assert.Equal(t, 21, stats.Abbreviations)
	assert.Equal(t, 7, stats.Categories)
	// every category carries a load, still an array on the wire
	raw = decode[map[string]any](t, rr)
	assert.Equal(t, []any{}, raw["unloaded_categories"])

	// a static table reloads to itself
	rr = a.do(t, http.MethodPost, "/rules/reload", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestFilesAndJobs(t *testing.T) {
	a := newTestAPI(t)
	a.seedScenario(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "level1.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("LEVEL 1\nOFC\nSTAIR-1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	up := decode[domain.UploadedFile](t, rr)
	assert.Equal(t, "level1.txt", up.Filename)
	assert.Equal(t, up.FileID+"_level1.txt", up.Key)

	rr = a.do(t, http.MethodGet, "/files/"+up.FileID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(t, http.MethodPost, "/jobs/parse?file_id="+up.FileID+"&plan_id=p1", nil)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	started := decode[map[string]string](t, rr)
	assert.Equal(t, "queued", started["status"])
	require.NotEmpty(t, started["job_id"])

	a.jobs.Wait()
	job := decode[domain.Job](t, a.do(t, http.MethodGet, "/jobs/"+started["job_id"], nil))
	assert.Equal(t, domain.JobStatusDone, job.Status)
	assert.Equal(t, 2, job.RoomsFound)

	jobs := decode[[]domain.Job](t, a.do(t, http.MethodGet, "/jobs", nil))
	assert.Len(t, jobs, 1)

	page := decode[service.RoomPage](t, a.do(t, http.MethodGet, "/plans/p1/rooms?limit=100", nil))
	assert.Equal(t, 5, page.Meta.Total)

	assertError(t, a.do(t, http.MethodGet, "/jobs/unknown", nil), http.StatusNotFound)
	assertError(t, a.do(t, http.MethodPost, "/jobs/parse?plan_id=p1", nil), http.StatusBadRequest)
	assertError(t, a.do(t, http.MethodPost, "/jobs/parse?file_id=nope&plan_id=p1", nil), http.StatusNotFound)
	assertError(t, a.do(t, http.MethodPost, "/files", nil), http.StatusBadRequest)
}
