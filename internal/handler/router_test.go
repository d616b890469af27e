package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/bookreview/internal/auth"
	"github.com/hitoshi/bookreview/internal/middleware"
)

// --- モック定義 ---

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type mockStatusRecorder struct {
	statuses []int
}

func (m *mockStatusRecorder) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

// echoAuthorization はコンテキストのAuthorizationをそのまま返すGraphQLハンドラーの代役。
func echoAuthorization() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header, _ := auth.AuthorizationFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"authorization": header})
	})
}

func newTestRouter(t *testing.T, deps RouterDeps) http.Handler {
	t.Helper()
	if deps.GraphQL == nil {
		deps.GraphQL = echoAuthorization()
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = &mockHealthChecker{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.CORSAllowedOrigin == "" {
		deps.CORSAllowedOrigin = "*"
	}
	return NewRouter(&deps)
}

// --- テスト ---

func TestRouter_GraphQL_ReceivesAuthorization(t *testing.T) {
	router := newTestRouter(t, RouterDeps{})

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ getBooks { id } }"}`))
	req.Header.Set("Authorization", "Bearer token-123")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["authorization"] != "Bearer token-123" {
		t.Errorf("authorization = %q, want %q", body["authorization"], "Bearer token-123")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be applied")
	}
}

func TestRouter_GraphQL_GETNotAllowed(t *testing.T) {
	router := newTestRouter(t, RouterDeps{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestRouter_PreflightReturns204(t *testing.T) {
	router := newTestRouter(t, RouterDeps{CORSAllowedOrigin: "https://books.example.com"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/graphql", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://books.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantDB     string
	}{
		{"DB接続正常", nil, http.StatusOK, "up"},
		{"DB接続失敗", errors.New("connection refused"), http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, RouterDeps{
				HealthChecker: &mockHealthChecker{pingFn: func(ctx context.Context) error {
					if _, ok := ctx.Deadline(); !ok {
						t.Error("ping should run with a deadline")
					}
					return tt.pingErr
				}},
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body healthResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Database != tt.wantDB {
				t.Errorf("database = %q, want %q", body.Database, tt.wantDB)
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, RouterDeps{
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics"))
		}),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "# metrics" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRouter_RateLimitAppliesToGraphQLOnly(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	router := newTestRouter(t, RouterDeps{RateLimiter: rl})

	post := func() int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", nil))
		return w.Code
	}

	if got := post(); got != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", got, http.StatusOK)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", got, http.StatusTooManyRequests)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_RecordsStatusMetrics(t *testing.T) {
	rec := &mockStatusRecorder{}
	router := newTestRouter(t, RouterDeps{StatusMetrics: rec})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if len(rec.statuses) != 2 {
		t.Fatalf("recorded %v, want 2 entries", rec.statuses)
	}
	if rec.statuses[0] != http.StatusOK || rec.statuses[1] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [200 404]", rec.statuses)
	}
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	router := newTestRouter(t, RouterDeps{
		GraphQL: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("resolver exploded")
		}),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
