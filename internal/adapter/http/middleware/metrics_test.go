package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "normalizes journal entry path",
			method:     http.MethodGet,
			path:       "/api/v1/journal-entries/ABC123",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "keeps non-matching path as-is",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpRequestsTotal.Reset()
			httpRequestDuration.Reset()
			httpRequestsInFlight.Set(0)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			Metrics(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			normalized := normalizePath(tc.path)
			counter := httpRequestsTotal.WithLabelValues(tc.method, normalized, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "journal entry path without suffix",
			input:    "/api/v1/journal-entries/ABC123",
			expected: "/api/v1/journal-entries/:id",
		},
		{
			name:     "journal entry transition",
			input:    "/api/v1/journal-entries/ABC123/post",
			expected: "/api/v1/journal-entries/:id/post",
		},
		{
			name:     "journal entry line",
			input:    "/api/v1/journal-entries/ABC123/lines/L1",
			expected: "/api/v1/journal-entries/:id/lines/:id",
		},
		{
			name:     "period closing step",
			input:    "/api/v1/periods/FP1/closing/validate",
			expected: "/api/v1/periods/:id/closing/validate",
		},
		{
			name:     "account balance history",
			input:    "/api/v1/accounts/1000/balance/history",
			expected: "/api/v1/accounts/:id/balance/history",
		},
		{
			name:     "collection path",
			input:    "/api/v1/periods/",
			expected: "/api/v1/periods/",
		},
		{
			name:     "non-matching path",
			input:    "/health",
			expected: "/health",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
