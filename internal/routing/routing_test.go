package routing_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"boombot/internal/routing"
	"boombot/pkg/enroll"
)

func TestOpsRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	registry := enroll.NewRegistry()
	assert.NoError(t, registry.Add(enroll.NewSession("u1", "dm1")))

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	routing.InitRoutes(api, registry, logger)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health",
			path:           "/api/health",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok"}`,
		},
		{
			name:           "active sessions",
			path:           "/api/sessions",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"active":1}`,
		},
		{
			name:           "unknown route",
			path:           "/api/nope",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, test.path, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, test.expectedStatus, w.Code)
			if test.expectedBody != "" {
				assert.JSONEq(t, test.expectedBody, w.Body.String())
			}
		})
	}
}
