package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	productListCacheKey = "catalog:products"
	productCachePrefix  = "catalog:product:"
)

// CatalogService reads products through a Redis cache. A failing or absent
// cache only costs a database round trip.
type CatalogService struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Logger
}

// NewCatalogService returns a CatalogService. rdb may be nil to disable caching.
func NewCatalogService(db *gorm.DB, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *CatalogService {
	return &CatalogService{db: db, rdb: rdb, ttl: ttl, log: log}
}

// ListProducts returns every product, featured ones first, newest first within each group.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product // Slice to hold products
	// Try to get from cache
	if s.cached(ctx, productListCacheKey, &products) {
		return products, nil
	}
	// If not in cache, fetch from DB
	if err := s.db.WithContext(ctx).Order("featured DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	if products == nil {
		products = []domain.Product{} // Empty list, never null
	}
	s.store(ctx, productListCacheKey, products) // Cache the catalog
	return products, nil
}

// GetProduct returns product id or ErrNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	key := productCachePrefix + strconv.FormatUint(uint64(id), 10) // Cache key for product
	var p domain.Product                                           // Product struct to hold data
	// Try to get from cache
	if s.cached(ctx, key, &p) {
		return p, nil
	}
	err := s.db.WithContext(ctx).First(&p, id).Error // Fetch from DB
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return p, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	s.store(ctx, key, p) // Cache the product
	return p, nil
}

func (s *CatalogService) cached(ctx context.Context, key string, dest any) bool {
	found, err := utils.GetCache(ctx, s.rdb, key, dest)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("catalog cache read failed")
		return false
	}
	return found
}

func (s *CatalogService) store(ctx context.Context, key string, value any) {
	if err := utils.SetCache(ctx, s.rdb, key, value, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("catalog cache write failed")
	}
}
