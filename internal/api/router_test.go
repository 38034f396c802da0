package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedhtools/etl/internal/config"
	"github.com/cedhtools/etl/internal/domain"
	"github.com/cedhtools/etl/internal/logger"
	"github.com/cedhtools/etl/internal/repository"
)

const testAPIKey = "test-key"

type fakeJobStore struct {
	nextID  uint
	jobs    map[uint]*domain.EtlJob
	lastErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uint]*domain.EtlJob)}
}

func (f *fakeJobStore) Create(ctx context.Context, job *domain.EtlJob) error {
	f.nextID++
	job.ID = f.nextID
	job.CreatedAt = time.Now().UTC()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uint) (*domain.EtlJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) ListRecent(ctx context.Context, limit int) ([]domain.EtlJob, error) {
	var out []domain.EtlJob
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeJobStore) ClaimNext(ctx context.Context) (*domain.EtlJob, error) {
	return nil, nil
}

func (f *fakeJobStore) Checkpoint(ctx context.Context, id uint, cursor string, records int) error {
	return nil
}

func (f *fakeJobStore) MarkCompleted(ctx context.Context, id uint, cursor string, records int) error {
	return nil
}

func (f *fakeJobStore) MarkFailed(ctx context.Context, id uint, jobErr error) error {
	return nil
}

func (f *fakeJobStore) ResetStuck(ctx context.Context, maxRetries int) (int, error) {
	return 0, nil
}

func (f *fakeJobStore) LastCompleted(ctx context.Context) (*domain.EtlJob, error) {
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	var last *domain.EtlJob
	for _, j := range f.jobs {
		if j.Status != domain.JobStatusCompleted || j.CompletedAt == nil {
			continue
		}
		if last == nil || j.CompletedAt.After(*last.CompletedAt) {
			last = j
		}
	}
	if last == nil {
		return nil, nil
	}
	copied := *last
	return &copied, nil
}

type fakeCounts struct {
	counts *repository.Counts
	err    error
}

func (f *fakeCounts) GetCounts(ctx context.Context) (*repository.Counts, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.counts, nil
}

func testRouter(jobs *fakeJobStore, counts *fakeCounts) *gin.Engine {
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.APIKey = testAPIKey
	cfg.Server.CORS.AllowAllOrigins = true
	if counts == nil {
		counts = &fakeCounts{counts: &repository.Counts{}}
	}
	return SetupRouter(cfg, jobs, counts, logger.NewDefault())
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestEtlGetBareIsOpen(t *testing.T) {
	r := testRouter(newFakeJobStore(), nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/etl", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "running")
}

func TestEtlGetListRequiresAuth(t *testing.T) {
	r := testRouter(newFakeJobStore(), nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/etl?list=true", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/etl?list=true", "", "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/etl?list=true", "", testAPIKey)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["total"])
}

func TestEtlGetByID(t *testing.T) {
	jobs := newFakeJobStore()
	require.NoError(t, jobs.Create(context.Background(), &domain.EtlJob{
		JobType: domain.JobTypeSeed,
		Status:  domain.JobStatusPending,
	}))
	r := testRouter(jobs, nil)

	w := doRequest(t, r, http.MethodGet, "/api/v1/etl?jobId=1", "", testAPIKey)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["id"])
	assert.Equal(t, "SEED", body["jobType"])

	w = doRequest(t, r, http.MethodGet, "/api/v1/etl?jobId=99", "", testAPIKey)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/etl?jobId=abc", "", testAPIKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEtlSubmitRequiresAuth(t *testing.T) {
	r := testRouter(newFakeJobStore(), nil)

	w := doRequest(t, r, http.MethodPost, "/api/v1/etl", `{"jobType":"SEED"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEtlSubmitEnqueuesJob(t *testing.T) {
	jobs := newFakeJobStore()
	r := testRouter(jobs, nil)

	w := doRequest(t, r, http.MethodPost, "/api/v1/etl",
		`{"jobType":"DAILY_UPDATE","startDate":"2025-06-01","endDate":"2025-06-30"}`, testAPIKey)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "DAILY_UPDATE", body["jobType"])
	assert.Equal(t, "PENDING", body["status"])

	stored, err := jobs.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.JobTypeDailyUpdate, stored.JobType)
	assert.Equal(t, "2025-06-01", stored.Parameters.StartDate)
}

func TestEtlSubmitRejectsUnknownType(t *testing.T) {
	r := testRouter(newFakeJobStore(), nil)

	w := doRequest(t, r, http.MethodPost, "/api/v1/etl",
		`{"jobType":"FULL_REFRESH"}`, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "jobType", decodeBody(t, w)["field"])
}

func TestHealthReportsLastCompletedJob(t *testing.T) {
	jobs := newFakeJobStore()
	completedAt := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	job := &domain.EtlJob{
		JobType:     domain.JobTypeDailyUpdate,
		Status:      domain.JobStatusCompleted,
		CompletedAt: &completedAt,
	}
	require.NoError(t, jobs.Create(context.Background(), job))
	jobs.jobs[job.ID].Status = domain.JobStatusCompleted
	jobs.jobs[job.ID].CompletedAt = &completedAt

	r := testRouter(jobs, nil)
	w := doRequest(t, r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2025-06-10T08:00:00Z", body["lastCompletedJobAt"])
}

func TestHealthDegradedOnStoreError(t *testing.T) {
	jobs := newFakeJobStore()
	jobs.lastErr = errors.New("db down")

	r := testRouter(jobs, nil)
	w := doRequest(t, r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decodeBody(t, w)["status"])
}

func TestStatsEndpoint(t *testing.T) {
	counts := &fakeCounts{counts: &repository.Counts{
		Commanders: 12,
		Cards:      340,
		Statistics: 2100,
	}}
	r := testRouter(newFakeJobStore(), counts)

	w := doRequest(t, r, http.MethodGet, "/api/v1/stats", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 12, body["commanders"])
	assert.EqualValues(t, 340, body["cards"])
}

func TestStatsEndpointError(t *testing.T) {
	r := testRouter(newFakeJobStore(), &fakeCounts{err: errors.New("db down")})

	w := doRequest(t, r, http.MethodGet, "/api/v1/stats", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
