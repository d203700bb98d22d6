package service

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping

	"storefront/internal/domain"  // Models and error sentinels
	"storefront/internal/metrics" // Cart mutation counters
	"storefront/internal/session" // Session identity

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CartService dispatches cart operations to the store of the session's regime.
type CartService struct {
	db       *gorm.DB        // Backs persistent carts
	sessions *session.Store  // Backs ephemeral carts
	catalog  *CatalogService // Resolves products
	log      *logrus.Logger  // Audit log
}

// NewCartService returns a CartService.
func NewCartService(db *gorm.DB, sessions *session.Store, catalog *CatalogService, log *logrus.Logger) *CartService {
	return &CartService{db: db, sessions: sessions, catalog: catalog, log: log}
}

// StoreFor returns the cart store of sess. The administrative principal gets
// the session-backed cart and registered principals the database-backed one.
func (s *CartService) StoreFor(sess session.Session) (CartStore, error) {
	// No session, no cart
	if sess.ID == "" {
		return nil, domain.ErrAuthentication
	}
	if sess.Principal.IsAdministrative() {
		return NewEphemeralCart(s.sessions, sess.ID), nil
	}
	uid, err := sess.Principal.UserID() // Fails for malformed registered ids
	if err != nil {
		return nil, err
	}
	return NewPersistentCart(s.db, uid), nil
}

// AddItem adds quantity units of productID to the session's cart. Stock is
// informational and not checked.
func (s *CartService) AddItem(ctx context.Context, sess session.Session, productID uint, quantity int) error {
	store, err := s.StoreFor(sess)
	if err != nil {
		return err
	}
	// Validate quantity before touching any store
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if quantity > MaxLineQuantity {
		return errLineLimit
	}
	product, err := s.catalog.GetProduct(ctx, productID) // ErrNotFound for unknown products
	if err != nil {
		return err
	}
	if err := store.Add(ctx, product, quantity); err != nil {
		return err
	}
	metrics.RecordCartMutation(store.Regime(), "add") // Count mutation
	// Log cart mutation
	s.log.WithFields(logrus.Fields{
		"principal_id": sess.Principal.ID, // Owner of the cart
		"regime":       store.Regime(),    // Storage regime
		"product_id":   productID,         // Product added
		"quantity":     quantity,          // Units added
	}).Info("Cart item added")
	return nil
}

// ListItems returns the session's cart lines, never nil.
func (s *CartService) ListItems(ctx context.Context, sess session.Session) ([]domain.CartLine, error) {
	store, err := s.StoreFor(sess)
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// RemoveItem removes the line of productID. Absent lines are not an error.
func (s *CartService) RemoveItem(ctx context.Context, sess session.Session, productID uint) error {
	store, err := s.StoreFor(sess)
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, productID); err != nil {
		return err
	}
	metrics.RecordCartMutation(store.Regime(), "remove") // Count mutation
	// Log cart mutation
	s.log.WithFields(logrus.Fields{
		"principal_id": sess.Principal.ID, // Owner of the cart
		"regime":       store.Regime(),    // Storage regime
		"product_id":   productID,         // Product removed
	}).Info("Cart item removed")
	return nil
}

// Count returns the total number of units in the cart.
func (s *CartService) Count(ctx context.Context, sess session.Session) (int, error) {
	lines, err := s.ListItems(ctx, sess)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range lines {
		n += l.Quantity // Sum units across lines
	}
	return n, nil
}
