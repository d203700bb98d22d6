package api

import (
	"net/http" // HTTP status codes

	"storefront/internal/middleware" // Session context helpers
	"storefront/internal/service"    // Cart service

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// AddToCartRequest is the body of POST /api/cart
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"` // Product to add
	Quantity  *int `json:"quantity"`                      // Defaults to 1
}

// ListCartHandler returns the session's cart lines
func ListCartHandler(carts *service.CartService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c) // RequireSession ran before
		lines, err := carts.ListItems(c.Request.Context(), sess)
		if err != nil {
			respondError(c, log, err, "list cart")
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// CartCountHandler returns the number of units in the cart
func CartCountHandler(carts *service.CartService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		n, err := carts.Count(c.Request.Context(), sess)
		if err != nil {
			respondError(c, log, err, "count cart")
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}

// AddToCartHandler adds a product to the session's cart
func AddToCartHandler(carts *service.CartService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		var req AddToCartRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		quantity := 1 // Default quantity
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if err := carts.AddItem(c.Request.Context(), sess, req.ProductID, quantity); err != nil {
			respondError(c, log, err, "add to cart")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
	}
}

// RemoveFromCartHandler removes a product line from the session's cart
func RemoveFromCartHandler(carts *service.CartService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		productID, ok := parseID(c, "productId")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		if err := carts.RemoveItem(c.Request.Context(), sess, productID); err != nil {
			respondError(c, log, err, "remove from cart")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart"})
	}
}
