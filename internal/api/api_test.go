package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/db/dbtest"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const adminPassword = "Password123"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	mr     *miniredis.Miniredis
	logs   *logrustest.Hook
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimit(t, 1000, 1000)
}

func newTestServerWithLimit(t *testing.T, perSecond float64, burst int) *testServer {
	t.Helper()
	gdb := dbtest.Open(t, true)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	log, hook := logrustest.NewNullLogger()

	admin, err := service.NewAdminAccount(adminPassword)
	require.NoError(t, err)
	store := session.NewStore(rdb, time.Hour)
	catalog := service.NewCatalogService(gdb, rdb, time.Minute, log)
	carts := service.NewCartService(gdb, store, catalog, log)

	router := NewRouter(Deps{
		Auth:        service.NewAuthService(gdb, admin, log),
		Catalog:     catalog,
		Carts:       carts,
		Checkout:    service.NewCheckoutService(gdb, carts, rdb, nil, log),
		Sessions:    session.NewManager(store, "test-secret", time.Hour, false, "", log),
		AuthLimiter: middleware.NewRateLimiter(perSecond, burst, log),
		Logger:      log,
	})
	return &testServer{t: t, router: router, mr: mr, logs: hook}
}

// do sends a JSON request, attaching cookie when not nil.
func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(email, password string) *http.Cookie {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	s.t.Fatal("login did not set the session cookie")
	return nil
}

func (s *testServer) registerAndLogin(email string) *http.Cookie {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", gin.H{"email": email, "password": "secret-pass", "name": "Shopper"}, nil)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(email, "secret-pass")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
