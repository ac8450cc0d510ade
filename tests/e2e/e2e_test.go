//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/config"
	"github.com/Waesta/Wapos-sub001/internal/infra"
	"github.com/Waesta/Wapos-sub001/internal/middleware"
	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/router"
	"github.com/Waesta/Wapos-sub001/internal/worker"
)

const e2eRegister = "REG-E2E"

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func mintToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:       uuid.New().String(),
		Username:     "e2e",
		Role:         role,
		RegisterCode: e2eRegister,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// seedCashSale writes a sale plus its cash payment leg straight into the shared
// sales tables, standing in for the sales-transaction engine.
func seedCashSale(t *testing.T, db *gorm.DB, total string, at time.Time) {
	t.Helper()
	amount := decimal.RequireFromString(total)
	sale := model.SaleRecord{
		ID:           uuid.New(),
		RegisterCode: e2eRegister,
		Subtotal:     amount,
		Total:        amount,
		AmountPaid:   amount,
		OccurredAt:   at,
	}
	require.NoError(t, db.Create(&sale).Error)
	require.NoError(t, db.Create(&model.PaymentRecord{
		ID:           uuid.New(),
		SaleID:       sale.ID,
		RegisterCode: e2eRegister,
		Method:       model.MethodCash,
		Amount:       amount,
		PaidAmount:   amount,
		OccurredAt:   at,
	}).Error)
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string
	db     *gorm.DB
	rdb    *redis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("wapos_test"),
		tcPostgres.WithUsername("wapos"),
		tcPostgres.WithPassword("wapos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		RateLimitPerMinute: 1000,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL, 0)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))
	// The sales engine owns these tables in production; here we create them so
	// the aggregator has something to read.
	require.NoError(t, db.AutoMigrate(&model.SaleRecord{}, &model.PaymentRecord{}, &model.VoidRecord{}))

	r := router.New(cfg, db, rdb, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server: srv,
		token:  mintToken(t, cfg.JWTSecret, "supervisor"),
		db:     db,
		rdb:    rdb,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullShiftCycle(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Open the drawer with a 5000.00 float.
	openResp := do(t, env.server, "POST", "/v1/register/open",
		jsonBody(t, map[string]any{"opening_amount": "5000.00"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, openResp.StatusCode)
	var session struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, openResp, &session)
	require.Equal(t, "open", session.Status)

	// 2. A 1200.00 cash sale lands during the shift.
	seedCashSale(t, env.db, "1200.00", time.Now().UTC())

	// 3. Mid-shift Y report.
	yResp := do(t, env.server, "POST", "/v1/reports/generate",
		jsonBody(t, map[string]any{"closure_type": "y"}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, yResp.StatusCode)
	var yClosure struct {
		ClosureType  string `json:"closure_type"`
		ResetApplied bool   `json:"reset_applied"`
		SessionID    string `json:"session_id"`
		Totals       struct {
			Sales struct {
				Count int64  `json:"count"`
				Total string `json:"total"`
			} `json:"sales"`
			Drawer struct {
				ExpectedDrawerCash string `json:"expected_drawer_cash"`
			} `json:"drawer"`
		} `json:"totals"`
	}
	decodeJSON(t, yResp, &yClosure)
	assert.Equal(t, "y", yClosure.ClosureType)
	assert.False(t, yClosure.ResetApplied)
	assert.Equal(t, session.ID, yClosure.SessionID)
	assert.Equal(t, int64(1), yClosure.Totals.Sales.Count)
	assert.Equal(t, "1200", yClosure.Totals.Sales.Total)
	assert.Equal(t, "6200", yClosure.Totals.Drawer.ExpectedDrawerCash)

	// 4. Finalized Z commits the period.
	zResp := do(t, env.server, "POST", "/v1/reports/generate",
		jsonBody(t, map[string]any{"closure_type": "z", "finalize": true}),
		env.token,
	)
	require.Equal(t, http.StatusCreated, zResp.StatusCode)
	var zClosure struct {
		ID           string `json:"id"`
		ResetApplied bool   `json:"reset_applied"`
		Totals       struct {
			Sales struct {
				Count int64 `json:"count"`
			} `json:"sales"`
		} `json:"totals"`
	}
	decodeJSON(t, zResp, &zClosure)
	assert.True(t, zClosure.ResetApplied)
	assert.Equal(t, int64(1), zClosure.Totals.Sales.Count)

	// The finalized Z queued an export job. The pool is not running in this
	// setup, so the job sits on the queue where we can inspect it.
	entries, err := env.rdb.LRange(context.Background(), worker.QueueClosureExport, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &job))
	var exportPayload worker.ExportJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &exportPayload))
	assert.Equal(t, zClosure.ID, exportPayload.ClosureID)
	assert.Equal(t, e2eRegister, exportPayload.RegisterCode)

	// 5. X right after the Z sees a fresh period.
	xResp := do(t, env.server, "POST", "/v1/reports/generate",
		jsonBody(t, map[string]any{"closure_type": "x"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, xResp.StatusCode)
	var xClosure struct {
		Totals struct {
			Sales struct {
				Count int64 `json:"count"`
			} `json:"sales"`
		} `json:"totals"`
	}
	decodeJSON(t, xResp, &xClosure)
	assert.Equal(t, int64(0), xClosure.Totals.Sales.Count)

	// 6. Close the drawer counting 50.00 short.
	closeResp := do(t, env.server, "POST", "/v1/register/close",
		jsonBody(t, map[string]any{"session_id": session.ID, "counted_amount": "6150.00"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, closeResp.StatusCode)
	var closeBody struct {
		Session struct {
			Status string `json:"status"`
		} `json:"session"`
		Variance struct {
			Expected string `json:"expected"`
			Delta    string `json:"delta"`
		} `json:"variance"`
	}
	decodeJSON(t, closeResp, &closeBody)
	assert.Equal(t, "closed", closeBody.Session.Status)
	assert.Equal(t, "6200", closeBody.Variance.Expected)
	assert.Equal(t, "-50", closeBody.Variance.Delta)

	// 7. The ledger holds the Y and the finalized Z.
	listResp := do(t, env.server, "GET", "/v1/reports/closures", nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Data []json.RawMessage `json:"data"`
	}
	decodeJSON(t, listResp, &list)
	assert.Len(t, list.Data, 2)
}

func TestE2E_DoubleOpenConflicts(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/register/open",
		jsonBody(t, map[string]any{"opening_amount": "100.00"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/register/open",
		jsonBody(t, map[string]any{"opening_amount": "100.00"}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_YWithoutSessionConflicts(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "POST", "/v1/reports/generate",
		jsonBody(t, map[string]any{"closure_type": "y"}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_AuthRequired(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/v1/register/active", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
