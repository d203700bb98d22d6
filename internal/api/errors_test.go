package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrConflict, http.StatusBadRequest},
		{domain.ErrAuthentication, http.StatusUnauthorized},
		{fmt.Errorf("%w: product 9", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %w", domain.ErrStore, errors.New("dial tcp: refused")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		log, hook := logrustest.NewNullLogger()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("request_id", "req-1")
		respondError(c, log, tc.err, "test")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		if tc.status != http.StatusInternalServerError {
			assert.Empty(t, hook.AllEntries(), "client errors are not logged")
			continue
		}
		assert.NotContains(t, w.Body.String(), "refused", "store details stay in the logs")
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "test", entry.Data["op"])
		assert.Equal(t, "req-1", entry.Data["request_id"])
		assert.Equal(t, tc.err.Error(), entry.Data["error"])
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", nil, nil).Code)
	w := s.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
