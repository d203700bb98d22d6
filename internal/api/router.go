package api

import (
	"net/http"

	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Carts       *service.CartService
	Checkout    *service.CheckoutService
	Sessions    *session.Manager
	AuthLimiter *middleware.RateLimiter
	CORSOrigins []string
	IsProd      bool
	Logger      *logrus.Logger
}

// NewRouter wires middleware and routes into a gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		metrics.Middleware(),
		middleware.SecurityHeaders(d.IsProd),
		cors.New(corsConfig(d.CORSOrigins)),
	)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.SessionMiddleware(d.Sessions))

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", d.AuthLimiter.Handler(), RegisterHandler(d.Auth, d.Logger))
	authGroup.POST("/login", d.AuthLimiter.Handler(), LoginHandler(d.Auth, d.Sessions, d.Logger))
	authGroup.POST("/logout", LogoutHandler(d.Sessions, d.Logger))
	authGroup.GET("/session", SessionHandler())

	// Catalog routes
	apiGroup.GET("/products", ListProductsHandler(d.Catalog, d.Logger))
	apiGroup.GET("/products/:id", GetProductHandler(d.Catalog, d.Logger))

	// Cart routes (session required)
	cartGroup := apiGroup.Group("/cart", middleware.RequireSession())
	cartGroup.GET("", ListCartHandler(d.Carts, d.Logger))
	cartGroup.GET("/count", CartCountHandler(d.Carts, d.Logger))
	cartGroup.POST("", AddToCartHandler(d.Carts, d.Logger))
	cartGroup.DELETE("/:productId", RemoveFromCartHandler(d.Carts, d.Logger))

	// Order routes (session required)
	orderGroup := apiGroup.Group("/orders", middleware.RequireSession())
	orderGroup.POST("", PlaceOrderHandler(d.Checkout, d.Logger))
	orderGroup.GET("", ListOrdersHandler(d.Checkout, d.Logger))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

// corsConfig allows credentialed requests from the configured origins, or
// from any origin when none are configured.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
