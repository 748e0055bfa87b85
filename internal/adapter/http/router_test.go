package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/glcore/internal/adapter/http/dto"
	"github.com/iho/glcore/internal/adapter/http/handler"
	apimiddleware "github.com/iho/glcore/internal/adapter/http/middleware"
	"github.com/iho/glcore/internal/adapter/repository/memory"
	"github.com/iho/glcore/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/glcore/internal/adapter/repository/redis"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/infrastructure/metrics"
	"github.com/iho/glcore/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"period_code":"2024-03","name":"March","start_date":"2024-03-01","end_date":"2024-03-31","fiscal_year":2024,"fiscal_month":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/periods/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/journal-entries/",
		"GET /api/v1/journal-entries/",
		"GET /api/v1/journal-entries/{id}",
		"POST /api/v1/journal-entries/{id}/lines",
		"DELETE /api/v1/journal-entries/{id}/lines/{lineId}",
		"POST /api/v1/journal-entries/{id}/submit",
		"POST /api/v1/journal-entries/{id}/approve",
		"POST /api/v1/journal-entries/{id}/reject",
		"POST /api/v1/journal-entries/{id}/post",
		"POST /api/v1/journal-entries/{id}/reverse",
		"POST /api/v1/periods/",
		"GET /api/v1/periods/{id}",
		"POST /api/v1/periods/{id}/reopen",
		"POST /api/v1/periods/{id}/closing/start",
		"POST /api/v1/periods/{id}/closing/validation-errors",
		"POST /api/v1/periods/{id}/closing/validate",
		"POST /api/v1/periods/{id}/closing/closing-entries",
		"POST /api/v1/periods/{id}/closing/close",
		"POST /api/v1/periods/{id}/closing/rollback",
		"POST /api/v1/periods/{id}/closing/run",
		"GET /api/v1/accounts/{id}/balance",
		"GET /api/v1/accounts/{id}/balance/history",
		"GET /api/v1/ledger/trial-balance",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/journal-entries/{id}/events",
		"GET /api/v1/periods/{id}/events",
		"GET /api/v1/audit",
		"GET /api/v1/chart/",
		"PUT /api/v1/chart/roles/{role}",
		"PUT /api/v1/chart/nominal",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_PostingAndClosingFlow(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	var period dto.PeriodResponse
	call(t, router, http.MethodPost, "/api/v1/periods/",
		`{"period_code":"2024-03","name":"March 2024","start_date":"2024-03-01","end_date":"2024-03-31","fiscal_year":2024,"fiscal_month":3}`,
		http.StatusCreated, &period)

	var entry dto.JournalEntryResponse
	call(t, router, http.MethodPost, "/api/v1/journal-entries/",
		`{"number":"JE-1","entry_date":"2024-03-10","description":"Interest received",
		  "lines":[{"account_id":"1000","amount":"300","currency":"USD","is_debit":true},
		           {"account_id":"4100","amount":"300","currency":"USD"}]}`,
		http.StatusCreated, &entry)
	assert.Equal(t, "draft", entry.Status)

	call(t, router, http.MethodPost, "/api/v1/journal-entries/"+entry.ID+"/submit", "", http.StatusOK, &entry)
	call(t, router, http.MethodPost, "/api/v1/journal-entries/"+entry.ID+"/approve", "", http.StatusOK, &entry)
	call(t, router, http.MethodPost, "/api/v1/journal-entries/"+entry.ID+"/post", "", http.StatusOK, &entry)
	assert.Equal(t, "posted", entry.Status)
	assert.Equal(t, period.ID, entry.FinancialPeriodID)

	var balance dto.PointBalanceResponse
	call(t, router, http.MethodGet, "/api/v1/accounts/1000/balance?currency=USD", "", http.StatusOK, &balance)
	assert.Equal(t, "300", balance.Balance.String())

	var tb dto.TrialBalanceResponse
	call(t, router, http.MethodGet, "/api/v1/ledger/trial-balance?as_of=2024-03-31", "", http.StatusOK, &tb)
	assert.True(t, tb.Balanced)
	assert.Len(t, tb.Rows, 2)

	var run dto.ClosingRunResponse
	call(t, router, http.MethodPost, "/api/v1/periods/"+period.ID+"/closing/run", "", http.StatusOK, &run)
	assert.True(t, run.Period.IsClosed)
	require.Len(t, run.ClosingEntries, 1)
	assert.Equal(t, "closing", run.ClosingEntries[0].EntryType)

	var rejected dto.ErrorResponse
	call(t, router, http.MethodPost, "/api/v1/journal-entries/",
		`{"number":"JE-2","entry_date":"2024-03-12","description":"Late",
		  "lines":[{"account_id":"1000","amount":"5","currency":"USD","is_debit":true},
		           {"account_id":"4100","amount":"5","currency":"USD"}]}`,
		http.StatusCreated, &entry)
	call(t, router, http.MethodPost, "/api/v1/journal-entries/"+entry.ID+"/submit", "", http.StatusOK, &entry)
	call(t, router, http.MethodPost, "/api/v1/journal-entries/"+entry.ID+"/approve", "", http.StatusOK, &entry)
	call(t, router, http.MethodPost, "/api/v1/journal-entries/"+entry.ID+"/post", "", http.StatusConflict, &rejected)

	var consistency dto.ConsistencyResponse
	call(t, router, http.MethodGet, "/api/v1/ledger/consistency", "", http.StatusOK, &consistency)
	assert.True(t, consistency.Consistent)

	var events []dto.EventResponse
	call(t, router, http.MethodGet, "/api/v1/periods/"+period.ID+"/events", "", http.StatusOK, &events)
	require.NotEmpty(t, events)
	assert.Equal(t, "financial_period.created", events[0].EventType)
	assert.Equal(t, "financial_period.closed", events[len(events)-1].EventType)

	var audit []dto.AuditLogResponse
	call(t, router, http.MethodGet, "/api/v1/audit?resource_id="+period.ID+"&action=financial_period.close", "", http.StatusOK, &audit)
	require.Len(t, audit, 1)
	assert.Equal(t, "controller", audit[0].UserID)
}

func TestNewRouter_ChartIsReadOnlyWithoutCache(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	var chart dto.ChartResponse
	call(t, router, http.MethodGet, "/api/v1/chart/", "", http.StatusOK, &chart)
	assert.Equal(t, "3100", chart.Roles["retained_earnings"])
	assert.Equal(t, []string{"4100", "5100"}, chart.Nominal)

	var resp dto.ErrorResponse
	call(t, router, http.MethodPut, "/api/v1/chart/roles/retained_earnings", `{"account_id":"3200"}`, http.StatusConflict, &resp)
	call(t, router, http.MethodPut, "/api/v1/chart/roles/petty_cash", `{"account_id":"1001"}`, http.StatusBadRequest, &resp)
}

func call(t *testing.T, h http.Handler, method, target, body string, wantStatus int, out any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(apimiddleware.ActorHeader, "controller")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, wantStatus, rec.Code, "%s %s: %s", method, target, rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	store := memory.NewStore()
	logger := zerolog.Nop()
	deps := usecase.Deps{
		TxManager: memory.NewTxManager(store),
		Repos: usecase.Repositories{
			Entries:  memory.NewJournalEntryRepository(store),
			Periods:  memory.NewFinancialPeriodRepository(store),
			Balances: memory.NewAccountBalanceRepository(store),
			Postings: memory.NewLedgerPostingRepository(store),
			Outbox:   memory.NewOutboxRepository(store),
			Audit:    memory.NewAuditRepository(store),
		},
		IDGen:   postgres.NewULIDGenerator(),
		Metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
		Logger:  &logger,

		BalanceTolerance: decimal.RequireFromString(domain.DefaultBalanceTolerance),
	}

	resolver := redisrepo.NewAccountResolver(nil, redisrepo.Chart{
		Roles:   map[string]string{redisrepo.RoleRetainedEarnings: "3100", redisrepo.RoleRounding: "6990"},
		Nominal: []string{"4100", "5100"},
	}, time.Minute, logger)

	cfg := RouterConfig{
		ChartHandler:        handler.NewChartHandler(resolver),
		JournalEntryHandler: handler.NewJournalEntryHandler(usecase.NewJournalUseCase(deps, resolver)),
		PeriodHandler:       handler.NewPeriodHandler(usecase.NewPeriodUseCase(deps), usecase.NewClosingUseCase(deps, resolver)),
		LedgerHandler:       handler.NewLedgerHandler(usecase.NewLedgerUseCase(deps)),
		HealthHandler:       handler.NewHealthHandler(nil),
		MetricsHandler:      http.NotFoundHandler(),
		Logger:              logger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
