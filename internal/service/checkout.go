package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/session"
	"storefront/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Order history pagination
const (
	DefaultOrdersPageSize = 20
	MaxOrdersPageSize     = 100

	orderHistoryTTL = 60 * time.Second
)

// OrderPublisher receives order.placed events.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, e events.OrderPlaced) error
}

// OrderPage is one page of a principal's order history.
type OrderPage struct {
	Orders     []domain.Order `json:"orders"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
	Cached     bool           `json:"cached"`
}

// CheckoutService turns carts into orders.
type CheckoutService struct {
	db        *gorm.DB
	carts     *CartService
	rdb       *redis.Client
	publisher OrderPublisher
	log       *logrus.Logger
}

// NewCheckoutService returns a CheckoutService. rdb and publisher may be nil.
func NewCheckoutService(db *gorm.DB, carts *CartService, rdb *redis.Client, publisher OrderPublisher, log *logrus.Logger) *CheckoutService {
	return &CheckoutService{db: db, carts: carts, rdb: rdb, publisher: publisher, log: log}
}

// PlaceOrder snapshots the session's cart into an order at current prices
// and takes the ordered units out of the cart. Units added while the order
// is being placed stay in the cart. A failed placement leaves the cart as it was.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sess session.Session, shippingAddress string) (domain.Order, error) {
	store, err := s.carts.StoreFor(sess) // Regime of the buyer
	if err != nil {
		return domain.Order{}, err
	}
	lines, err := store.List(ctx) // Snapshot of the cart, prices at read time
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	order := domain.Order{
		CustomerEmail:   sess.Principal.Email,               // Buyer email, also for the admin
		Status:          domain.OrderStatusPending,          // New orders are pending
		ShippingAddress: strings.TrimSpace(shippingAddress), // Free-form address
		Lines:           make([]domain.OrderLine, 0, len(lines)),
	}
	// Registered buyers own the order row, the admin has no user row
	if !sess.Principal.IsAdministrative() {
		uid, err := sess.Principal.UserID()
		if err != nil {
			return domain.Order{}, err
		}
		order.UserID = &uid
	}
	var total float64 // Sum of line totals
	// Freeze every line at its listed price
	for _, l := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
		})
		total += l.Price * float64(l.Quantity)
	}
	order.Total = math.Round(total*100) / 100 // Round to cents

	// Persist the order; a persistent cart gives up the ordered units in the same transaction
	persistent, isPersistent := store.(*PersistentCart)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err // Return error to rollback
		}
		if isPersistent {
			return persistent.withTx(tx).Consume(ctx, lines) // Only the snapshotted units
		}
		return nil // Commit transaction
	})
	// Handle transaction result
	if err != nil {
		// Log the error with context
		s.log.WithFields(logrus.Fields{
			"principal_id": sess.Principal.ID, // Buyer
			"lines":        len(lines),        // Cart size
			"error":        err.Error(),       // Error message
		}).Error("Order placement failed")
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}

	if !isPersistent {
		// The order is committed; a stale session cart is only logged.
		if err := store.Consume(ctx, lines); err != nil {
			s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to update session cart after checkout")
		}
	}

	metrics.RecordOrderPlaced(store.Regime()) // Count order
	// Log successful order
	s.log.WithFields(logrus.Fields{
		"order_id":     order.ID,          // New order
		"principal_id": sess.Principal.ID, // Buyer
		"regime":       store.Regime(),    // Storage regime of the cart
		"total":        order.Total,       // Order total
	}).Info("Order placed")

	// Invalidate every cached history page of the buyer
	if err := utils.DeleteCachePrefix(ctx, s.rdb, orderHistoryPrefix(sess.Principal)); err != nil {
		s.log.WithError(err).Warn("failed to invalidate order history cache")
	}
	s.publish(ctx, sess.Principal, order)
	return order, nil
}

func (s *CheckoutService) publish(ctx context.Context, p domain.Principal, order domain.Order) {
	if s.publisher == nil {
		return
	}
	e := events.OrderPlaced{
		OrderID:       order.ID,
		PrincipalID:   p.ID,
		PrincipalKind: string(p.Kind),
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total,
		PlacedAt:      order.PlacedAt,
	}
	for _, l := range order.Lines {
		e.Lines = append(e.Lines, events.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	if err := s.publisher.PublishOrderPlaced(ctx, e); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order.placed")
	}
}

// ListOrders returns one page of the principal's orders, newest first.
// Out-of-range page and pageSize values fall back to the defaults.
func (s *CheckoutService) ListOrders(ctx context.Context, sess session.Session, page, pageSize int) (OrderPage, error) {
	if sess.ID == "" {
		return OrderPage{}, domain.ErrAuthentication
	}
	if page < 1 {
		page = 1 // Default page
	}
	if pageSize < 1 || pageSize > MaxOrdersPageSize {
		pageSize = DefaultOrdersPageSize // Default page size
	}

	cacheKey := orderHistoryPrefix(sess.Principal) + "page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
	var cached OrderPage
	// Try to get from cache
	if found, err := utils.GetCache(ctx, s.rdb, cacheKey, &cached); err == nil && found {
		cached.Cached = true // Served from cache
		return cached, nil
	}

	scope, err := s.ordersOf(ctx, sess.Principal)
	if err != nil {
		return OrderPage{}, err
	}
	var total int64 // Total count of orders
	// Count total orders for pagination
	if err := scope().Model(&domain.Order{}).Count(&total).Error; err != nil {
		return OrderPage{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	orders := []domain.Order{} // Empty page, never null
	// Fetch paginated orders with their lines
	err = scope().
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("placed_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return OrderPage{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}

	res := OrderPage{
		Orders:     orders,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
	}
	// Cache the result for 60 seconds
	if err := utils.SetCache(ctx, s.rdb, cacheKey, res, orderHistoryTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache order history")
	}
	return res, nil
}

// ordersOf returns a query factory restricted to the principal's orders.
// Administrative orders have no user row and are matched by email.
func (s *CheckoutService) ordersOf(ctx context.Context, p domain.Principal) (func() *gorm.DB, error) {
	if p.IsAdministrative() {
		return func() *gorm.DB {
			return s.db.WithContext(ctx).Where("user_id IS NULL AND customer_email = ?", p.Email)
		}, nil
	}
	uid, err := p.UserID()
	if err != nil {
		return nil, err
	}
	return func() *gorm.DB {
		return s.db.WithContext(ctx).Where("user_id = ?", uid)
	}, nil
}

func orderHistoryPrefix(p domain.Principal) string {
	return "orders:principal:" + p.ID + ":"
}
