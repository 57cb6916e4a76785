package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nourish/internal/config"
	"nourish/internal/database"
	"nourish/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

const testPassword = "Sup3r-Secret-Pass!"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		JWTSecret:        testSecret,
		JWTTTLHours:      1,
		DBDriver:         config.DriverSQLite,
		AllowedOrigins:   "http://localhost:5173",
		FeatureFlags:     "parallel_feed=on",
		StoreTimeoutMS:   3000,
		MediaDir:         t.TempDir(),
		MediaBaseURL:     "/media",
		MediaMaxUploadMB: 2,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(t.Context(), db))
	return db
}

// testServer bundles a wired server over a private sqlite database.
type testServer struct {
	t   *testing.T
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithRedis(t, nil)
}

func newTestServerWithRedis(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	db := newTestDB(t)
	srv, err := NewServerWithDeps(testConfig(t), db, rdb)
	require.NoError(t, err)
	srv.userService.WithHashCost(4)
	return &testServer{t: t, srv: srv, app: srv.NewApp(), db: db}
}

// apiResponse is the decoded success or error envelope.
type apiResponse struct {
	Status int
	Body   map[string]any
}

func (r apiResponse) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func (r apiResponse) list(key string) []any {
	l, _ := r.data()[key].([]any)
	return l
}

func (r apiResponse) object(key string) map[string]any {
	o, _ := r.data()[key].(map[string]any)
	return o
}

func (ts *testServer) do(method, path, token string, body any) apiResponse {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(ts.t, err)
	defer func() { _ = resp.Body.Close() }()

	out := apiResponse{Status: resp.StatusCode, Body: map[string]any{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

// account is a signed-up user and its bearer token.
type account struct {
	ID     uint
	Handle string
	Token  string
}

// signup registers a user with role through the API and logs it in.
func (ts *testServer) signup(role models.Role) account {
	ts.t.Helper()
	handle := fmt.Sprintf("u%d", gofakeit.Number(100000, 999999999))
	email := handle + "@example.com"

	resp := ts.do(http.MethodPost, "/api/users", "", map[string]any{
		"email":      email,
		"password":   testPassword,
		"first_name": gofakeit.FirstName(),
		"last_name":  gofakeit.LastName(),
		"handle":     handle,
		"role":       string(role),
	})
	require.Equal(ts.t, http.StatusCreated, resp.Status, resp.Body)

	login := ts.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(ts.t, http.StatusOK, login.Status, login.Body)

	user := login.object("user")
	return account{
		ID:     uint(user["id"].(float64)),
		Handle: handle,
		Token:  login.data()["token"].(string),
	}
}

// promote turns an account into an admin directly in the store.
func (ts *testServer) promote(a account) {
	ts.t.Helper()
	require.NoError(ts.t, ts.db.Model(&models.User{}).Where("id = ?", a.ID).
		Update("role", models.RoleAdmin).Error)
}

func idOf(obj map[string]any) uint {
	return uint(obj["id"].(float64))
}
