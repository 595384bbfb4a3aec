package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/axellelanca/urlalias/internal/generator"
	"github.com/axellelanca/urlalias/internal/models"
	"github.com/axellelanca/urlalias/internal/repository"
	"github.com/axellelanca/urlalias/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testUser     = "admin"
	testPassword = "s3cret"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.InitDB("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db, "sqlite://:memory:"))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewStore(db)
	auth := services.NewAuthService(repository.NewUserRepository(db))
	_, err = auth.CreateUser(context.Background(), testUser, testPassword)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		Aliases:  services.NewAliasService(store, generator.New(), nil, "http://sho.rt", 24*time.Hour),
		Resolver: services.NewResolver(store, nil, time.Minute),
		Stats:    services.NewStatsService(repository.NewClickRepository(db)),
		Auth:     auth,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testEnv{router: router, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.SetBasicAuth(testUser, testPassword)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) create(t *testing.T, target string) AliasResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/", CreateAliasRequest{OrigURL: target}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AliasResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func codeOf(resp AliasResponse) string {
	return strings.TrimPrefix(resp.URL, "http://sho.rt/")
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestID_Echo(t *testing.T) {
	env := setupTestEnv(t)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAuth(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Missing credentials", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/", nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `Basic realm="urlshortener"`, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("Wrong password", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/stats", nil)
		req.SetBasicAuth(testUser, "nope")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Deactivate requires auth", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/whatever/deactivate", nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Redirect is public", func(t *testing.T) {
		resp := env.create(t, "https://example.com")
		w := env.do(t, http.MethodGet, "/"+codeOf(resp), nil, false)
		assert.Equal(t, http.StatusFound, w.Code)
	})
}

type failingAuth struct{}

func (failingAuth) Authenticate(context.Context, string, string) (bool, error) {
	return false, errors.New("db down")
}

func TestAuth_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RequireBasicAuth(failingAuth{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("a", "b")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateAlias(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Success", func(t *testing.T) {
		resp := env.create(t, "https://example.com/page")
		assert.Equal(t, "https://example.com/page", resp.OrigURL)
		assert.True(t, strings.HasPrefix(resp.URL, "http://sho.rt/"))
		assert.Len(t, codeOf(resp), generator.DefaultCodeLength)
		assert.True(t, resp.IsActive)
		assert.Equal(t, 24*time.Hour, resp.ExpireTime.Sub(resp.CreateTime))
	})

	t.Run("Invalid URL", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/", CreateAliasRequest{OrigURL: "ftp://example.com"}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid body", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
		req.SetBasicAuth(testUser, testPassword)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListAliases(t *testing.T) {
	env := setupTestEnv(t)
	var created []AliasResponse
	for _, target := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		created = append(created, env.create(t, target))
	}
	w := env.do(t, http.MethodPut, "/"+codeOf(created[1])+"/deactivate", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	list := func(t *testing.T, query string) ListAliasesResponse {
		t.Helper()
		w := env.do(t, http.MethodGet, "/"+query, nil, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp ListAliasesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	t.Run("Defaults", func(t *testing.T) {
		resp := list(t, "")
		assert.Equal(t, int64(3), resp.TotalItems)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 1, resp.TotalPages)
		require.Len(t, resp.Items, 3)
		assert.Equal(t, created[0].URL, resp.Items[0].URL)
	})

	t.Run("Active filter", func(t *testing.T) {
		resp := list(t, "?is_active=yes")
		assert.Equal(t, int64(2), resp.TotalItems)

		resp = list(t, "?is_active=0")
		assert.Equal(t, int64(1), resp.TotalItems)
		require.Len(t, resp.Items, 1)
		assert.False(t, resp.Items[0].IsActive)
	})

	t.Run("Beyond the end", func(t *testing.T) {
		resp := list(t, "?page=3&per_page=10")
		assert.Empty(t, resp.Items)
		assert.NotNil(t, resp.Items)
		assert.Equal(t, int64(3), resp.TotalItems)

		resp = list(t, "?page=4611686018427387904&per_page=4")
		assert.Empty(t, resp.Items)
		assert.Equal(t, int64(3), resp.TotalItems)
	})

	t.Run("Bad parameters", func(t *testing.T) {
		for _, q := range []string{"?page=0", "?per_page=101", "?page=abc", "?is_active=maybe"} {
			w := env.do(t, http.MethodGet, "/"+q, nil, true)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})
}

func TestRedirect(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Found", func(t *testing.T) {
		resp := env.create(t, "https://example.com/target")
		w := env.do(t, http.MethodGet, "/"+codeOf(resp), nil, false)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/target", w.Header().Get("Location"))

		var count int64
		require.NoError(t, env.db.Model(&models.Click{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Not found", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/NONEXISTENT", nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "URL not found", errorMessage(t, w))
	})

	t.Run("Deactivated", func(t *testing.T) {
		resp := env.create(t, "https://example.com/off")
		w := env.do(t, http.MethodPut, "/"+codeOf(resp)+"/deactivate", nil, true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"URL deactivated"}`, w.Body.String())

		w = env.do(t, http.MethodGet, "/"+codeOf(resp), nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "URL deactivated", errorMessage(t, w))
	})

	t.Run("Expired", func(t *testing.T) {
		resp := env.create(t, "https://example.com/old")
		past := time.Now().UTC().Add(-time.Hour)
		require.NoError(t, env.db.Model(&models.Alias{}).
			Where("code = ?", codeOf(resp)).
			Update("expires_at", past).Error)

		w := env.do(t, http.MethodGet, "/"+codeOf(resp), nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "URL expired", errorMessage(t, w))

		w = env.do(t, http.MethodGet, "/"+codeOf(resp), nil, false)
		assert.Equal(t, "URL expired", errorMessage(t, w))
	})

	t.Run("Store failure", func(t *testing.T) {
		resp := env.create(t, "https://example.com/broken")
		require.NoError(t, env.db.Migrator().DropTable(&models.Click{}))
		t.Cleanup(func() { require.NoError(t, env.db.AutoMigrate(&models.Click{})) })

		w := env.do(t, http.MethodGet, "/"+codeOf(resp), nil, false)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Database error", errorMessage(t, w))
	})
}

func TestDeactivate_NotFound(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodPut, "/missing/deactivate", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	env := setupTestEnv(t)
	busy := env.create(t, "https://busy.example.com")
	quiet := env.create(t, "https://quiet.example.com")
	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodGet, "/"+codeOf(busy), nil, false)
		require.Equal(t, http.StatusFound, w.Code)
	}

	w := env.do(t, http.MethodGet, "/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, StatsResponse{URL: busy.URL, OrigURL: busy.OrigURL, LastHourClicks: 2, LastDayClicks: 2}, rows[0])
	assert.Equal(t, StatsResponse{URL: quiet.URL, OrigURL: quiet.OrigURL}, rows[1])
}
