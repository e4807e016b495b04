package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/gooddeeds/internal/bootstrap"
	"anoa.com/gooddeeds/internal/config"
	"anoa.com/gooddeeds/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (c client) login(email, password string) string {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, code, body)
	return body["access_token"].(string)
}

func (c client) register(name, email string) string {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": "password123"})
	require.Equal(c.t, http.StatusCreated, code, body)
	return body["access_token"].(string)
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:           "test",
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		FeedStreakWindow: 5 * time.Minute,
		FeedWorkers:      2,
		FeedQueueSize:    64,
		RateLimitComment: time.Second,
	}
}

func TestFeedFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	require.NoError(t, bootstrap.SeedSuperAdmin(db, "root@example.com", "rootpass123"))

	srv := NewServer(testConfig(), Deps{DB: db, Redis: rdb})
	c := client{t: t, handler: srv.Handler()}

	code, _ := c.do(http.MethodGet, "/api/feeds", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	root := c.login("root@example.com", "rootpass123")
	alice := c.register("Alice", "alice@example.com")
	bob := c.register("Bob", "bob@example.com")

	code, _ = c.do(http.MethodPost, "/api/deeds", alice, gin.H{"title": "Donate blood"})
	assert.Equal(t, http.StatusForbidden, code)

	code, deed := c.do(http.MethodPost, "/api/deeds", root, gin.H{"title": "Donate blood"})
	require.Equal(t, http.StatusCreated, code, deed)
	deedID := deed["id"].(string)

	code, group := c.do(http.MethodPost, "/api/groups", alice, gin.H{"name": "Blood Drive"})
	require.Equal(t, http.StatusCreated, code, group)
	groupID := group["id"].(string)

	code, _ = c.do(http.MethodPost, "/api/acts/bulk", alice, gin.H{"deed": "x", "count": 0})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPost, "/api/acts/bulk", bob, gin.H{"deed": deedID, "group": groupID, "count": 20})
	assert.Equal(t, http.StatusForbidden, code)

	code, bulk := c.do(http.MethodPost, "/api/acts/bulk", alice, gin.H{"deed": deedID, "group": groupID, "count": 20})
	require.Equal(t, http.StatusCreated, code, bulk)
	assert.EqualValues(t, 20, bulk["count"])
	assert.Len(t, bulk["actIds"], 20)

	for i := 0; i < 2; i++ {
		code, _ = c.do(http.MethodPost, "/api/acts", bob, gin.H{"deed": deedID})
		require.Equal(t, http.StatusCreated, code)
	}

	require.NoError(t, srv.Shutdown(context.Background()))

	code, feed := c.do(http.MethodGet, "/api/feeds", alice, nil)
	require.Equal(t, http.StatusOK, code, feed)
	items := feed["data"].([]interface{})
	require.Len(t, items, 2)

	newest := items[0].(map[string]interface{})
	oldest := items[1].(map[string]interface{})
	assert.EqualValues(t, 2, newest["count"])
	assert.Equal(t, false, newest["bulk"])
	assert.EqualValues(t, 20, oldest["count"])
	assert.Equal(t, true, oldest["bulk"])
	assert.Equal(t, bulk["feedItemId"], oldest["id"])

	code, feed = c.do(http.MethodGet, "/api/feeds?group="+groupID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, feed["data"], 1)

	code, _ = c.do(http.MethodGet, "/api/feeds?operator=$xor", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(testConfig(), Deps{DB: testutil.NewDB(t)})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	code, body := client{t: t, handler: srv.Handler()}.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}
