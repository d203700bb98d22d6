package api

import (
	"errors"   // Error inspection
	"io"       // Empty body detection
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"storefront/internal/middleware" // Session context helpers
	"storefront/internal/service"    // Checkout service

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// PlaceOrderRequest is the optional body of POST /api/orders
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"max=500"` // Free-form address
}

// PlaceOrderHandler turns the session's cart into an order
func PlaceOrderHandler(checkout *service.CheckoutService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		var req PlaceOrderRequest
		// An empty body is allowed
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		order, err := checkout.PlaceOrder(c.Request.Context(), sess, req.ShippingAddress)
		if err != nil {
			respondError(c, log, err, "place order")
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// ListOrdersHandler returns one page of the principal's order history
func ListOrdersHandler(checkout *service.CheckoutService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)
		page := 1                                 // Default page
		pageSize := service.DefaultOrdersPageSize // Default page size
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= service.MaxOrdersPageSize {
				pageSize = v
			}
		}
		res, err := checkout.ListOrders(c.Request.Context(), sess, page, pageSize)
		if err != nil {
			respondError(c, log, err, "list orders")
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
