package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListProductsHandler returns the whole catalog
func ListProductsHandler(catalog *service.CatalogService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := catalog.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "list products")
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GetProductHandler returns one product. Non-numeric ids are unknown products.
func GetProductHandler(catalog *service.CatalogService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		p, err := catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err, "get product")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
