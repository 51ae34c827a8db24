package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wellness/internal/metrics"
	"github.com/aristath/wellness/internal/modules/profile"
	"github.com/aristath/wellness/internal/modules/whatif"
	"github.com/aristath/wellness/internal/storage"
	testingpkg "github.com/aristath/wellness/internal/testing"
)

func TestRegisterRoutes(t *testing.T) {
	svc, err := whatif.NewService(0, metrics.NewNop(), zerolog.Nop())
	require.NoError(t, err)
	handler := NewHandler(svc, &testingpkg.FakeSource{}, profile.NewStore(storage.NewMemoryStore(), zerolog.Nop()), 30, zerolog.Nop())

	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")

	testCases := []struct {
		method string
		path   string
		name   string
	}{
		{"GET", "/whatif/metrics", "GetMetrics"},
		{"POST", "/whatif", "Simulate"},
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
