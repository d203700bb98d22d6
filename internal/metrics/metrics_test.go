package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/products/:id", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/99", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/products/:id", "404"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(cartMutations.WithLabelValues("ephemeral", "add"))
	RecordCartMutation("ephemeral", "add")
	assert.Equal(t, before+1, testutil.ToFloat64(cartMutations.WithLabelValues("ephemeral", "add")))

	before = testutil.ToFloat64(ordersPlaced.WithLabelValues("persistent"))
	RecordOrderPlaced("persistent")
	assert.Equal(t, before+1, testutil.ToFloat64(ordersPlaced.WithLabelValues("persistent")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordCartMutation("persistent", "remove")
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "storefront_cart_mutations_total"))
}
