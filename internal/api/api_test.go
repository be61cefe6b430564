package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/mechatrack/internal/auth"
	"github.com/erazemk/mechatrack/internal/config"
	"github.com/erazemk/mechatrack/internal/db"
	"github.com/erazemk/mechatrack/internal/metrics"
	"github.com/erazemk/mechatrack/internal/store"
)

const testJWTSecret = "test-secret"

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

type testServer struct {
	*httptest.Server
	t     *testing.T
	items *store.Items
	jobs  *store.Jobs
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:       config.JWTConfig{Secret: testJWTSecret, Issuer: "mechatrack", TTL: 24 * time.Hour},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Inventory: config.InventoryConfig{LowStockThreshold: 5},
		Images:    config.ImagesConfig{MaxUploadBytes: 1 << 20},
	}
}

func newTestServer(t *testing.T, mutate func(*Deps)) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	cfg := testConfig()

	revoked := &store.RevokedTokens{DB: database}
	deps := Deps{
		Config: cfg,
		DB:     database,
		Auth: &auth.Service{
			Users:  &store.Users{DB: database},
			Tokens: &auth.Tokens{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL, Revoked: revoked},
			Cost:   bcrypt.MinCost,
		},
		Revoked: revoked,
		Items:   &store.Items{DB: database},
		Tools:   &store.Tools{DB: database},
		Jobs:    &store.Jobs{DB: database},
		Metrics: metrics.NewHTTPMetrics(prometheus.NewRegistry()),
	}
	if mutate != nil {
		mutate(&deps)
	}

	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)
	return &testServer{Server: server, t: t, items: deps.Items, jobs: deps.Jobs}
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) signupAndLogin(email string) string {
	s.t.Helper()
	status := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "s3cret", "name": "Mechanic",
	}, nil)
	require.Equal(s.t, http.StatusCreated, status)

	var session struct {
		Token string `json:"token"`
	}
	status = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "s3cret",
	}, &session)
	require.Equal(s.t, http.StatusOK, status)
	require.NotEmpty(s.t, session.Token)
	return session.Token
}

type errorBody struct {
	Error string `json:"error"`
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t, nil)

	var msg map[string]string
	status := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "mech@example.com", "password": "pw", "name": "Mechanic",
	}, &msg)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User created", msg["message"])

	var session struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	status = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "mech@example.com", "password": "pw",
	}, &session)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, map[string]any{"id": 1.0, "email": "mech@example.com", "name": "Mechanic"}, session.User)

	var me map[string]any
	status = s.do(http.MethodGet, "/api/auth/me", session.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "mech@example.com", me["email"])
}

func TestSignupErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.signupAndLogin("dup@example.com")

	var e errorBody
	status := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "dup@example.com", "password": "x", "name": "Again",
	}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", e.Error)

	status = s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@b.c"}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All fields required", e.Error)

	status = s.do(http.MethodPost, "/api/auth/signup", "", "{not json", &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgInvalidBody, e.Error)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t, nil)
	s.signupAndLogin("mech@example.com")

	var e errorBody
	status := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "mech@example.com", "password": "nope",
	}, &e)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgInvalidCredentials, e.Error)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/items", "/tools", "/jobs", "/reports", "/reports/stock", "/api/auth/me"} {
		var e errorBody
		status := s.do(http.MethodGet, path, "", nil, &e)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, auth.MsgTokenMissing, e.Error, path)
	}

	var e errorBody
	status := s.do(http.MethodGet, "/items", "garbage", nil, &e)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgTokenInvalid, e.Error)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")

	status := s.do(http.MethodPost, "/api/auth/logout", token, nil, nil)
	require.Equal(t, http.StatusOK, status)

	var e errorBody
	status = s.do(http.MethodGet, "/items", token, nil, &e)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, auth.MsgTokenRevoked, e.Error)
}

func TestItemsCRUD(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")

	var list []map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/items", token, nil, &list))
	assert.Empty(t, list)

	var item map[string]any
	status := s.do(http.MethodPost, "/items", token, map[string]any{"name": "Brake Disc", "quantity": 10}, &item)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Brake Disc", item["name"])
	assert.Equal(t, "Uncategorized", item["category"])
	assert.Equal(t, 10.0, item["quantity"])
	assert.Nil(t, item["price"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, item["created_at"])

	var e errorBody
	status = s.do(http.MethodPost, "/items", token, map[string]any{"name": "No quantity"}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name and quantity required", e.Error)

	var updated map[string]any
	status = s.do(http.MethodPut, "/items/1", token, map[string]any{"price": 6000, "category": "Brakes"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Brake Disc", updated["name"])
	assert.Equal(t, 10.0, updated["quantity"])
	assert.Equal(t, 6000.0, updated["price"])
	assert.Equal(t, "Brakes", updated["category"])

	status = s.do(http.MethodPut, "/items/9999", token, map[string]any{"quantity": 1}, &e)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Item not found", e.Error)

	status = s.do(http.MethodPut, "/items/abc", token, map[string]any{"quantity": 1}, &e)
	assert.Equal(t, http.StatusNotFound, status)

	var msg map[string]string
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/items/1", token, nil, &msg))
	assert.Equal(t, "Item deleted", msg["message"])

	status = s.do(http.MethodDelete, "/items/1", token, nil, &e)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteMissingLeavesRowsAlone(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/tools", token, map[string]any{"name": "Jack"}, nil))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/jobs", token, map[string]any{
		"customer_name": "Ann", "vehicle_reg": "KAA 1", "service": "Oil", "cost": 10,
	}, nil))

	for path, msg := range map[string]string{"/tools/9999": "Tool not found", "/jobs/9999": "Job not found"} {
		var e errorBody
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, token, nil, &e))
		assert.Equal(t, msg, e.Error)
	}

	var tools, jobs []map[string]any
	s.do(http.MethodGet, "/tools", token, nil, &tools)
	s.do(http.MethodGet, "/jobs", token, nil, &jobs)
	assert.Len(t, tools, 1)
	assert.Len(t, jobs, 1)
}

func TestToolsDefaultsAndCheckout(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")

	var tool map[string]any
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/tools", token, map[string]any{"name": "Torque Wrench"}, &tool))
	assert.Equal(t, "Available", tool["status"])
	assert.Nil(t, tool["borrower"])

	var e errorBody
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/tools", token, map[string]any{}, &e))
	assert.Equal(t, "Name required", e.Error)

	var out map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/tools/1", token, map[string]any{"status": "Borrowed", "borrower": "Kamau"}, &out))
	assert.Equal(t, "Borrowed", out["status"])
	assert.Equal(t, "Kamau", out["borrower"])
	assert.Equal(t, "Torque Wrench", out["name"])
}

func TestJobsValidationAndReport(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")

	for _, tc := range []struct {
		cost any
		msg  string
	}{
		{0, "cost is required"},
		{"abc", "Cost must be a valid number"},
		{-5, "Cost must be positive"},
	} {
		var e errorBody
		status := s.do(http.MethodPost, "/jobs", token, map[string]any{
			"customer_name": "Ann", "vehicle_reg": "KAA 1", "service": "Brakes", "cost": tc.cost,
		}, &e)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, tc.msg, e.Error)
	}

	var e errorBody
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/jobs", token, map[string]any{
		"customer_name": "Ann", "service": "Brakes", "cost": 10,
	}, &e))
	assert.Equal(t, "vehicle_reg is required", e.Error)

	n, err := s.jobs.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	var job map[string]any
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/jobs", token, map[string]any{
		"customer_name": " Ann ", "vehicle_reg": "KAA 1", "service": "Brakes", "cost": 100,
	}, &job))
	assert.Equal(t, "Ann", job["customer_name"])
	assert.Equal(t, "Pending", job["status"])

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/jobs", token, map[string]any{
		"customer_name": "Ben", "vehicle_reg": "KBB 2", "service": "Oil", "cost": "50", "status": "Completed",
	}, nil))

	var updated map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/jobs/1", token, map[string]any{"cost": "120.5"}, &updated))
	assert.Equal(t, 120.5, updated["cost"])

	var summary map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/reports", token, nil, &summary))
	assert.Equal(t, map[string]any{
		"totalJobs": 2.0, "totalRevenue": 170.5, "pending": 1.0, "inProgress": 0.0, "completed": 1.0,
	}, summary)
}

func TestStockReport(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")

	_, err := store.SeedParts(context.Background(), s.items, store.DefaultParts)
	require.NoError(t, err)

	var summary struct {
		TotalParts         int            `json:"totalParts"`
		TotalUnits         int            `json:"totalUnits"`
		LowStock           int            `json:"lowStock"`
		LowStockByCategory map[string]int `json:"lowStockByCategory"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/reports/stock", token, nil, &summary))
	assert.Equal(t, 6, summary.TotalParts)
	assert.Equal(t, 90, summary.TotalUnits)
	assert.Equal(t, 1, summary.LowStock)
	assert.Equal(t, map[string]int{"Engine and Powertrain": 1}, summary.LowStockByCategory)
}

func TestItemImageUpload(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.signupAndLogin("mech@example.com")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/items", token, map[string]any{"name": "Brake Disc", "quantity": 1}, nil))

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, img))

	upload := func(path string, data []byte) int {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPut, s.URL+path, &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	var e errorBody
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/items/1/image", token, nil, &e))
	assert.Equal(t, MsgImageMissing, e.Error)

	assert.Equal(t, http.StatusBadRequest, upload("/items/1/image", []byte("not an image")))
	assert.Equal(t, http.StatusNotFound, upload("/items/9999/image", pngData.Bytes()))
	require.Equal(t, http.StatusOK, upload("/items/1/image", pngData.Bytes()))

	req, err := http.NewRequest(http.MethodGet, s.URL+"/items/1/image", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	decoded, format, err := image.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 20, decoded.Bounds().Dx())
}

func TestAuthRateLimitBlocksLogin(t *testing.T) {
	rates := newFakeRateStore()
	s := newTestServer(t, func(d *Deps) {
		d.Config.RateLimit = config.RateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 2}
		d.RateLimiter = rates
	})

	body := map[string]string{"email": "Blocked@example.com", "password": "x"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/auth/login", "", body, nil))
	}

	var e errorBody
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/api/auth/login", "", body, &e))
	assert.Equal(t, MsgRateLimited, e.Error)
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	var health map[string]string
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil, &health))
	assert.Equal(t, "ok", health["status"])

	req, err := http.NewRequest(http.MethodGet, s.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `route="/healthz"`)

	var e errorBody
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/nope", "", nil, &e))
	assert.Equal(t, "Not found", e.Error)
}

func TestRecovererAnswersJSON(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
