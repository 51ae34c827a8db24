package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/lexicon"
	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/actionpack"
	testingpkg "github.com/aristath/wellness/internal/testing"
)

func TestRegisterRoutes(t *testing.T) {
	handler := NewHandler(
		actionpack.NewSynthesizer(lexicon.Default()),
		&testingpkg.FakeSource{},
		fakeProfiles{perms: domain.DefaultPermissions()},
		metrics.NewNop(),
		30,
		zerolog.Nop(),
	)

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")

	testCases := []struct {
		method string
		path   string
		name   string
	}{
		{"GET", "/insights", "List"},
		{"GET", "/insights/top", "Top"},
		{"POST", "/insights/filter", "Filter"},
		{"POST", "/insights/action-pack", "Build"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.NotEqual(t, http.StatusNotFound, w.Code, "Route %s %s should be registered", tc.method, tc.path)
		})
	}
}
