package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"LenaAI/pkg/config"
	"LenaAI/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, authMode string) *config.Config {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_MODE", authMode)
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("COMPLETION_PROVIDER", config.ProviderMock)
	t.Setenv("DB_DRIVER", database.DriverSQLite)
	t.Setenv("DATABASE_URL", database.MemoryDSN(t.Name()))
	cfg, err := config.Parse()
	require.NoError(t, err)
	return cfg
}

func TestBuildRouterServesHealthInBothModes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, mode := range []string{config.AuthModeOpen, config.AuthModeToken} {
		t.Run(mode, func(t *testing.T) {
			router, cleanup, err := buildRouter(testConfig(t, mode), zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(cleanup)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "ok", body["status"])

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`)))
			if mode == config.AuthModeToken {
				assert.NotEqual(t, http.StatusNotFound, w.Code)
			} else {
				assert.Equal(t, http.StatusNotFound, w.Code)
			}
		})
	}
}

func TestBuildRouterOpenModeChatsWithMockProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, cleanup, err := buildRouter(testConfig(t, config.AuthModeOpen), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"user_id":"alice","text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "This is the start of our conversation.")
}

func TestBuildRouterRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t, config.AuthModeOpen)
	cfg.DatabaseDriver = "oracle"
	_, _, err := buildRouter(cfg, zerolog.Nop())
	assert.Error(t, err)
}
