package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/lexicon"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
	testingpkg "github.com/aristath/wellness/internal/testing"
)

type fakeProfiles struct {
	perms domain.Permissions
	err   error
}

func (f fakeProfiles) ActiveProfileID() (string, error) { return "default", f.err }

func (f fakeProfiles) Permissions(string) domain.Permissions { return f.perms }

func sampleInsights() []domain.Insight {
	return []domain.Insight{
		{ID: "c1", Type: domain.InsightCorrelation, Title: "Steps and mood", Summary: "More steps on busy days."},
		{ID: "a1", Type: domain.InsightAnomaly, Title: "Short sleep", Summary: "Sleep dropped below your usual."},
	}
}

func setup(source *testingpkg.FakeSource, profiles fakeProfiles) (*chi.Mux, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	h := NewHandler(actionpack.NewSynthesizer(lexicon.Default()), source, profiles, m, 30, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r, m
}

func TestHandleBuild(t *testing.T) {
	r, _ := setup(&testingpkg.FakeSource{}, fakeProfiles{perms: domain.DefaultPermissions()})

	t.Run("builds a pack", func(t *testing.T) {
		body := `{"id":"a1","type":"anomaly","title":"Short sleep","summary":"Sleep dropped below your usual."}`
		req := httptest.NewRequest(http.MethodPost, "/api/insights/action-pack", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var pack actionpack.ActionPack
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pack))
		assert.NotEmpty(t, pack.Action)
		assert.NotEmpty(t, pack.HowToTest)
		assert.Contains(t, pack.Tags, actionpack.TagSleep)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/insights/action-pack", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleTop(t *testing.T) {
	t.Run("prefers the anomaly", func(t *testing.T) {
		source := &testingpkg.FakeSource{InsightList: sampleInsights()}
		r, _ := setup(source, fakeProfiles{perms: domain.DefaultPermissions()})

		req := httptest.NewRequest(http.MethodGet, "/api/insights/top?range_days=14", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp topResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Insight)
		assert.Equal(t, "a1", resp.Insight.ID)
		assert.NotNil(t, resp.ActionPack)
		assert.Equal(t, 14, source.LastRange)
	})

	t.Run("nothing survives the filter", func(t *testing.T) {
		source := &testingpkg.FakeSource{InsightList: sampleInsights()}
		r, _ := setup(source, fakeProfiles{perms: domain.Permissions{}})

		req := httptest.NewRequest(http.MethodGet, "/api/insights/top", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"insight":null,"actionPack":null}`, rec.Body.String())
	})

	t.Run("upstream failure", func(t *testing.T) {
		source := &testingpkg.FakeSource{Err: errors.New("boom")}
		r, _ := setup(source, fakeProfiles{perms: domain.DefaultPermissions()})

		req := httptest.NewRequest(http.MethodGet, "/api/insights/top", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("bad range", func(t *testing.T) {
		r, _ := setup(&testingpkg.FakeSource{}, fakeProfiles{perms: domain.DefaultPermissions()})

		req := httptest.NewRequest(http.MethodGet, "/api/insights/top?range_days=abc", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleFilter(t *testing.T) {
	r, _ := setup(&testingpkg.FakeSource{}, fakeProfiles{perms: domain.Permissions{Activity: true}})

	payload, err := json.Marshal(insightsRequest{Insights: sampleInsights()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/insights/filter", strings.NewReader(string(payload)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp insightsRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Insights, 1)
	assert.Equal(t, "c1", resp.Insights[0].ID)
}

func TestHandleList_EmptyIsArray(t *testing.T) {
	r, _ := setup(&testingpkg.FakeSource{}, fakeProfiles{perms: domain.DefaultPermissions()})

	req := httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"insights":[]}`, rec.Body.String())
}
