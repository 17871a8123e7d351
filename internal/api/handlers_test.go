package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/service/deliverability"
	"github.com/ignite/deliverability-engine/internal/storage"
	"github.com/ignite/deliverability-engine/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeProber struct {
	got domain.ProbeRequest
	res domain.ProbeResult
}

func (f *fakeProber) Check(_ context.Context, req domain.ProbeRequest) domain.ProbeResult {
	f.got = req
	return f.res
}

type fakeHealth struct {
	metrics domain.HealthMetrics
	err     error
	window  domain.Window
}

func (f *fakeHealth) HealthMetrics(_ context.Context, w domain.Window) (domain.HealthMetrics, error) {
	f.window = w
	if f.err != nil {
		return domain.HealthMetrics{}, f.err
	}
	m := f.metrics
	m.Window = w
	return m, nil
}

type fakeQuality struct {
	scores map[string]domain.QualityScore
	err    error
}

func (f *fakeQuality) QualityScore(_ context.Context, id string) (domain.QualityScore, error) {
	if f.err != nil {
		return domain.QualityScore{}, f.err
	}
	s, ok := f.scores[id]
	if !ok {
		return domain.QualityScore{}, fmt.Errorf("%w: %s", deliverability.ErrNotFound, id)
	}
	return s, nil
}

type fakeArchive struct {
	saved *domain.ListValidationReport
	err   error
}

func (f *fakeArchive) SaveListReport(_ context.Context, r *domain.ListValidationReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = r
	return "list-reports/2026/03/15/abc.json", nil
}

type fakeSnapshots struct {
	saved     []domain.HealthMetrics
	saveErr   error
	listLimit int
}

func (f *fakeSnapshots) SaveHealthSnapshot(_ context.Context, m *domain.HealthMetrics) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *m)
	return nil
}

func (f *fakeSnapshots) ListHealthSnapshots(_ context.Context, w domain.Window, limit int) ([]storage.HealthSnapshot, error) {
	f.listLimit = limit
	var out []storage.HealthSnapshot
	for _, m := range f.saved {
		if m.Window == w {
			out = append(out, storage.HealthSnapshot{RecordedAt: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), Metrics: m})
		}
	}
	return out, nil
}

type testEnv struct {
	router    http.Handler
	probe     *fakeProber
	health    *fakeHealth
	quality   *fakeQuality
	archive   *fakeArchive
	snapshots *fakeSnapshots
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		probe:     &fakeProber{res: domain.ProbeResult{ProbeID: "p-1", Success: true, MessageID: "m-1", Checks: domain.DeliverabilityCheckSet{Format: true, Domain: true, MX: true, SMTP: true}}},
		health:    &fakeHealth{metrics: domain.HealthMetrics{TotalEmails: 10, ReputationScore: 100, Alerts: []string{}}},
		quality:   &fakeQuality{scores: map[string]domain.QualityScore{"e-1": {SentEmailID: "e-1", Score: 88}}},
		archive:   &fakeArchive{},
		snapshots: &fakeSnapshots{},
	}
	h := NewHandlers(validation.New(validation.DefaultLexicon()), env.probe, env.health, env.quality, env.archive, env.snapshots)
	env.router = SetupRoutes(h, nil, nil)
	return env
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// =============================================================================
// VALIDATION ENDPOINTS
// =============================================================================

func TestValidateTemplate_Endpoint(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodPost, "/api/validation/template", domain.EmailTemplate{})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[domain.ValidationResult](t, rec)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Issues, "Subject line is required")
	assert.Contains(t, res.Issues, "HTML content is required")
}

func TestValidateTemplate_BadJSON(t *testing.T) {
	env := setupTestRouter(t)
	rec := do(t, env.router, http.MethodPost, "/api/validation/template", `{"subject":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateList_Endpoint(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodPost, "/api/validation/list", map[string][]string{
		"emails": {"a@example.com", "A@Example.com", "bad", "x@mailinator.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[listResponse](t, rec)
	assert.Equal(t, []string{"a@example.com"}, res.Valid)
	assert.Equal(t, []string{"a@example.com"}, res.Duplicates)
	assert.Equal(t, []string{"bad"}, res.Invalid)
	assert.Equal(t, []string{"x@mailinator.com"}, res.Disposable)
	assert.Equal(t, 4, res.Report.Total)
	assert.Equal(t, 25.0, res.Report.ValidityRate)
	assert.Empty(t, res.ArchiveKey)
	assert.Nil(t, env.archive.saved)
}

func TestValidateList_Archive(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodPost, "/api/validation/list?archive=true", map[string][]string{"emails": {"a@example.com"}})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[listResponse](t, rec)
	assert.Equal(t, "list-reports/2026/03/15/abc.json", res.ArchiveKey)
	require.NotNil(t, env.archive.saved)
	assert.Equal(t, 1, env.archive.saved.Report.ValidCount)
}

func TestValidateList_ArchiveFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.archive.err = errors.New("s3 down")

	rec := do(t, env.router, http.MethodPost, "/api/validation/list?archive=true", map[string][]string{"emails": {"a@example.com"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "s3 down")
}

func TestValidateList_ArchiveNotConfigured(t *testing.T) {
	h := NewHandlers(validation.New(validation.DefaultLexicon()), &fakeProber{}, &fakeHealth{}, &fakeQuality{}, nil, nil)
	router := SetupRoutes(h, nil, nil)

	rec := do(t, router, http.MethodPost, "/api/validation/list?archive=1", map[string][]string{"emails": {}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestValidateFormat_Endpoint(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodPost, "/api/validation/format", map[string]any{
		"email":  "user@example.com",
		"emails": []string{"user@mailinator.com", "not-an-address", ""},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[struct {
		Results []formatResult `json:"results"`
	}](t, rec)
	assert.Equal(t, []formatResult{
		{Email: "user@example.com", Valid: true},
		{Email: "user@mailinator.com", Valid: true, Disposable: true},
		{Email: "not-an-address"},
		{Email: ""},
	}, res.Results)
}

func TestValidateFormat_NormalizesLikeList(t *testing.T) {
	env := setupTestRouter(t)
	input := []string{" User@Example.com ", "\tTemp@Mailinator.COM"}

	rec := do(t, env.router, http.MethodPost, "/api/validation/format", map[string]any{"emails": input})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[struct {
		Results []formatResult `json:"results"`
	}](t, rec)
	assert.Equal(t, []formatResult{
		{Email: "user@example.com", Valid: true},
		{Email: "temp@mailinator.com", Valid: true, Disposable: true},
	}, res.Results)

	rec = do(t, env.router, http.MethodPost, "/api/validation/list", map[string]any{"emails": input[:1]})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[domain.ListValidationReport](t, rec)
	assert.Equal(t, []string{"user@example.com"}, list.Valid)
}

func TestValidateFormat_EmptyBatch(t *testing.T) {
	env := setupTestRouter(t)
	rec := do(t, env.router, http.MethodPost, "/api/validation/format", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

// =============================================================================
// DELIVERABILITY ENDPOINTS
// =============================================================================

func TestProbe_Endpoint(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodPost, "/api/deliverability/probe", domain.ProbeRequest{
		To:        "user@example.com",
		Template:  &domain.EmailTemplate{Subject: "Hi {{ name }}", HTMLContent: "<p>x</p>"},
		MergeData: map[string]any{"name": "Ana"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[domain.ProbeResult](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "m-1", res.MessageID)
	assert.Equal(t, "user@example.com", env.probe.got.To)
	require.NotNil(t, env.probe.got.Template)
	assert.Equal(t, "Ana", env.probe.got.MergeData["name"])
}

func TestProbe_FailedProbeIsStillOK(t *testing.T) {
	env := setupTestRouter(t)
	env.probe.res = domain.ProbeResult{ProbeID: "p-2", Error: "invalid format"}

	rec := do(t, env.router, http.MethodPost, "/api/deliverability/probe", domain.ProbeRequest{To: "nope"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[domain.ProbeResult](t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "invalid format", res.Error)
}

func TestHealthMetrics_Endpoint(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodGet, "/api/deliverability/health?window=7d", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[domain.HealthMetrics](t, rec)
	assert.Equal(t, domain.Window7d, res.Window)
	assert.Equal(t, 100, res.ReputationScore)
	require.Len(t, env.snapshots.saved, 1)
	assert.Equal(t, domain.Window7d, env.snapshots.saved[0].Window)
}

func TestHealthMetrics_DefaultWindow(t *testing.T) {
	env := setupTestRouter(t)
	rec := do(t, env.router, http.MethodGet, "/api/deliverability/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Window30d, env.health.window)
}

func TestHealthMetrics_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"unknown window", "?window=14d", nil, http.StatusBadRequest},
		{"store down", "", fmt.Errorf("%w: count total: %w", deliverability.ErrStoreUnavailable, errors.New("pq: connection refused")), http.StatusServiceUnavailable},
		{"unexpected", "", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t)
			env.health.err = tt.err

			rec := do(t, env.router, http.MethodGet, "/api/deliverability/health"+tt.query, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "connection refused")
			assert.Empty(t, env.snapshots.saved)
		})
	}
}

func TestHealthMetrics_SnapshotFailureDoesNotFailRequest(t *testing.T) {
	env := setupTestRouter(t)
	env.snapshots.saveErr = errors.New("throttled")

	rec := do(t, env.router, http.MethodGet, "/api/deliverability/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHistory_Endpoint(t *testing.T) {
	env := setupTestRouter(t)
	do(t, env.router, http.MethodGet, "/api/deliverability/health?window=90d", nil)

	rec := do(t, env.router, http.MethodGet, "/api/deliverability/health/history?window=90d&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, env.snapshots.listLimit)

	res := decode[struct {
		Window    domain.Window            `json:"window"`
		Snapshots []storage.HealthSnapshot `json:"snapshots"`
	}](t, rec)
	assert.Equal(t, domain.Window90d, res.Window)
	require.Len(t, res.Snapshots, 1)

	rec = do(t, env.router, http.MethodGet, "/api/deliverability/health/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQualityScore_Endpoint(t *testing.T) {
	env := setupTestRouter(t)

	rec := do(t, env.router, http.MethodGet, "/api/deliverability/quality/e-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 88, decode[domain.QualityScore](t, rec).Score)

	rec = do(t, env.router, http.MethodGet, "/api/deliverability/quality/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.quality.err = fmt.Errorf("%w: get sent email x: %w", deliverability.ErrStoreUnavailable, errors.New("timeout"))
	rec = do(t, env.router, http.MethodGet, "/api/deliverability/quality/e-1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpoint_NoChecker(t *testing.T) {
	env := setupTestRouter(t)
	rec := do(t, env.router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
