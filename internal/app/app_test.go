package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localkart/homeservices-api/internal/config"
	"github.com/localkart/homeservices-api/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		StoreDriver:     config.StoreMemory,
		JWTSecret:       "test-secret",
		JWTExpire:       time.Hour,
		BcryptCost:      4,
		AllowedOrigins:  []string{"http://localhost:5173"},
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		MaxBodyBytes:    1 << 20,
	}
}

type apiTest struct {
	t   *testing.T
	app *App
}

func newAPI(t *testing.T) *apiTest {
	t.Helper()
	reg := prometheus.NewRegistry()
	a, err := New(Options{
		Config:  testConfig(),
		Stores:  MemoryStores(),
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Prom:    observability.NewProm(reg),
		Metrics: reg,
	})
	require.NoError(t, err)
	return &apiTest{t: t, app: a}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Token   string          `json:"token"`
	Errors  json.RawMessage `json:"errors"`
}

func (a *apiTest) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.app.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a *apiTest) register(email string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "User " + email, "email": email, "phone": "555-0100", "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	require.NotEmpty(a.t, env.Token)
	return env.Token
}

func (a *apiTest) adminToken(email string) string {
	a.t.Helper()
	a.register(email)
	require.NoError(a.t, a.app.Auth.PromoteToAdmin(context.Background(), email))
	code, env := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, code)
	return env.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestScenario_LoginFailuresLookTheSame(t *testing.T) {
	api := newAPI(t)
	api.register("a@x.com")

	code, env := api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, env.Token)

	wrongCode, wrong := api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "nope123"})
	unknownCode, unknown := api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "z@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, wrongCode)
	assert.Equal(t, wrongCode, unknownCode)
	assert.Equal(t, "Invalid credentials", wrong.Message)
	assert.Equal(t, wrong.Message, unknown.Message)
}

func TestRoundTrip_RegisterLoginMe(t *testing.T) {
	api := newAPI(t)
	token := api.register("rt@x.com")

	code, env := api.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[map[string]any](t, env.Data)
	assert.Equal(t, "rt@x.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "addressesVersion")

	code, _ = api.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	api := newAPI(t)
	code, env := api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "A", "email": "bad", "phone": "1", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Errors)

	api.register("dup@x.com")
	code, env = api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "A", "email": "dup@x.com", "phone": "1", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "already registered")
}

func bookingBody() gin.H {
	return gin.H{
		"customerName":  "Guest Person",
		"customerEmail": "guest@x.com",
		"customerPhone": "555-0199",
		"serviceType":   "plumber",
		"serviceOption": "Pipe Repair & Replacement",
		"date":          "2026-11-20",
		"time":          "09:30",
		"address":       "4 Elm St",
		"totalPrice":    599,
	}
}

func TestScenario_GuestBookingVisibility(t *testing.T) {
	api := newAPI(t)
	other := api.register("other@x.com")
	admin := api.adminToken("admin@x.com")

	code, env := api.do(http.MethodPost, "/api/bookings", "", bookingBody())
	require.Equal(t, http.StatusCreated, code, env.Message)
	created := decode[map[string]any](t, env.Data)
	assert.Nil(t, created["user"])
	assert.Equal(t, "pending", created["status"])
	id := created["id"].(string)

	code, _ = api.do(http.MethodGet, "/api/bookings/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodDelete, "/api/bookings/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodGet, "/api/bookings/"+id, admin, nil)
	require.Equal(t, http.StatusOK, code)
	got := decode[map[string]any](t, env.Data)
	assert.Equal(t, float64(599), got["totalPrice"])
	assert.Equal(t, "plumber", got["serviceType"])
	assert.Equal(t, "guest@x.com", got["customerEmail"])
}

func TestCreateBooking_IgnoresClientStatusAndOwner(t *testing.T) {
	api := newAPI(t)
	token := api.register("own@x.com")
	body := bookingBody()
	body["status"] = "completed"
	body["user"] = "000000000000000000000000"

	code, env := api.do(http.MethodPost, "/api/bookings", token, body)
	require.Equal(t, http.StatusCreated, code)
	created := decode[map[string]any](t, env.Data)
	assert.Equal(t, "pending", created["status"])
	assert.NotEqual(t, "000000000000000000000000", created["user"])

	code, env = api.do(http.MethodGet, "/api/bookings/my-bookings", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	// a bad token on the optional-auth route degrades to guest
	code, env = api.do(http.MethodPost, "/api/bookings", "garbage", bookingBody())
	require.Equal(t, http.StatusCreated, code)
	assert.Nil(t, decode[map[string]any](t, env.Data)["user"])
}

func TestCreateBooking_Validation(t *testing.T) {
	api := newAPI(t)
	body := bookingBody()
	body["serviceType"] = "gardening"
	code, _ := api.do(http.MethodPost, "/api/bookings", "", body)
	assert.Equal(t, http.StatusBadRequest, code)

	body = bookingBody()
	body["date"] = "next tuesday"
	code, _ = api.do(http.MethodPost, "/api/bookings", "", body)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestScenario_SingleDefaultAddress(t *testing.T) {
	api := newAPI(t)
	token := api.register("addr@x.com")

	code, _ := api.do(http.MethodPost, "/api/auth/addresses", token, gin.H{"label": "Home", "isDefault": true})
	require.Equal(t, http.StatusOK, code)
	code, env := api.do(http.MethodPost, "/api/auth/addresses", token, gin.H{"label": "Work", "isDefault": true})
	require.Equal(t, http.StatusOK, code)

	var user struct {
		Addresses []struct {
			ID        string `json:"id"`
			Label     string `json:"label"`
			IsDefault bool   `json:"isDefault"`
		} `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	var defaults []string
	for _, a := range user.Addresses {
		if a.IsDefault {
			defaults = append(defaults, a.Label)
		}
	}
	assert.Equal(t, []string{"Work"}, defaults)

	code, env = api.do(http.MethodPatch, "/api/auth/addresses/"+user.Addresses[0].ID+"/default", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.True(t, user.Addresses[0].IsDefault)
	assert.False(t, user.Addresses[1].IsDefault)

	code, env = api.do(http.MethodDelete, "/api/auth/addresses/000000000000000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Address not found", env.Message)
}

func TestScenario_AdminLifecycleIsHardened(t *testing.T) {
	api := newAPI(t)
	admin := api.adminToken("admin@x.com")

	_, env := api.do(http.MethodPost, "/api/bookings", "", bookingBody())
	id := decode[map[string]any](t, env.Data)["id"].(string)

	for _, status := range []string{"confirmed", "completed"} {
		code, env := api.do(http.MethodPatch, "/api/bookings/"+id, admin, gin.H{"status": status})
		require.Equal(t, http.StatusOK, code, env.Message)
		assert.Equal(t, status, decode[map[string]any](t, env.Data)["status"])
	}

	// completed is terminal: going back to pending is rejected
	code, env := api.do(http.MethodPatch, "/api/bookings/"+id, admin, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Message, "completed")

	code, _ = api.do(http.MethodPatch, "/api/bookings/"+id, admin, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCancel_IsIdempotentOverHTTP(t *testing.T) {
	api := newAPI(t)
	token := api.register("c@x.com")
	_, env := api.do(http.MethodPost, "/api/bookings", token, bookingBody())
	id := decode[map[string]any](t, env.Data)["id"].(string)

	for i := 0; i < 2; i++ {
		code, env := api.do(http.MethodDelete, "/api/bookings/"+id, token, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "cancelled", decode[map[string]any](t, env.Data)["status"])
	}

	code, _ := api.do(http.MethodPatch, "/api/bookings/"+id, token, gin.H{"totalPrice": 1})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestListAll_AdminOnly(t *testing.T) {
	api := newAPI(t)
	user := api.register("u@x.com")
	admin := api.adminToken("admin@x.com")
	api.do(http.MethodPost, "/api/bookings", user, bookingBody())

	code, _ := api.do(http.MethodGet, "/api/bookings", user, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodGet, "/api/bookings", admin, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]map[string]any](t, env.Data)
	require.Len(t, list, 1)
	owner := list[0]["owner"].(map[string]any)
	assert.Equal(t, "u@x.com", owner["email"])
}

func TestCatalog_Endpoints(t *testing.T) {
	api := newAPI(t)
	user := api.register("u@x.com")
	admin := api.adminToken("admin@x.com")
	_, err := api.app.Catalog.SeedIfEmpty(context.Background())
	require.NoError(t, err)

	code, env := api.do(http.MethodGet, "/api/services?category=salon", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4, *env.Count)

	code, _ = api.do(http.MethodGet, "/api/services/category/gardening", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	body := gin.H{"name": "Lawn Care", "category": "cleaning", "description": "Mowing", "price": 30}
	code, _ = api.do(http.MethodPost, "/api/services", user, body)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodPost, "/api/services", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = api.do(http.MethodPost, "/api/services", admin, body)
	require.Equal(t, http.StatusCreated, code)
	id := decode[map[string]any](t, env.Data)["id"].(string)

	code, env = api.do(http.MethodPatch, "/api/services/"+id+"/toggle", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, decode[map[string]any](t, env.Data)["isActive"])

	code, env = api.do(http.MethodDelete, "/api/services/"+id, admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Service deleted successfully", env.Message)

	code, _ = api.do(http.MethodGet, "/api/services/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPI(t)

	code, env := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.app.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "homeservices_http_requests_total")

	code, env = api.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}
