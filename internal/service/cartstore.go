package service

import (
	"context" // Request-scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"storefront/internal/domain"  // Models and error sentinels
	"storefront/internal/session" // Session record holding the ephemeral cart

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Upsert clause
)

// Cart storage regimes
const (
	RegimeEphemeral  = "ephemeral"  // Lines live in the session record
	RegimePersistent = "persistent" // Lines live in cart_items

	// MaxLineQuantity caps the units of one product in a cart.
	MaxLineQuantity = 99
)

// errLineLimit is returned when an add would push a line past MaxLineQuantity
var errLineLimit = fmt.Errorf("%w: at most %d units per product", domain.ErrValidation, MaxLineQuantity)

// CartStore is the storage behind one principal's cart. EphemeralCart and
// PersistentCart are its only implementations; which one a session gets is
// fixed by the principal kind chosen at login.
type CartStore interface {
	Add(ctx context.Context, p domain.Product, quantity int) error
	List(ctx context.Context) ([]domain.CartLine, error)
	Remove(ctx context.Context, productID uint) error
	Clear(ctx context.Context) error
	// Consume takes the ordered quantities out of the cart. Units added after
	// the order was snapshotted stay in the cart.
	Consume(ctx context.Context, ordered []domain.CartLine) error
	Regime() string
}

// EphemeralCart keeps lines inside the Redis session record. It never
// touches the database.
type EphemeralCart struct {
	sessions  *session.Store // Session store
	sessionID string         // Owning session
}

// NewEphemeralCart returns the cart of session sid.
func NewEphemeralCart(sessions *session.Store, sid string) *EphemeralCart {
	return &EphemeralCart{sessions: sessions, sessionID: sid}
}

func (c *EphemeralCart) Regime() string { return RegimeEphemeral }

// Add increments the line of p or appends a snapshot of p.
func (c *EphemeralCart) Add(ctx context.Context, p domain.Product, quantity int) error {
	err := c.sessions.UpdateCart(ctx, c.sessionID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		// Merge into an existing line of the same product
		for i := range lines {
			if lines[i].ProductID == p.ID {
				if lines[i].Quantity+quantity > MaxLineQuantity {
					return nil, errLineLimit // Both operands are bounded, the sum cannot overflow
				}
				lines[i].Quantity += quantity
				return lines, nil
			}
		}
		// Otherwise snapshot the product as a new line
		return append(lines, domain.CartLine{
			ProductID: p.ID,
			Quantity:  quantity,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Brand:     p.Brand,
		}), nil
	})
	return sessionErr(err)
}

// List returns the stored lines in insertion order.
func (c *EphemeralCart) List(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := c.sessions.Cart(ctx, c.sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	if lines == nil {
		lines = []domain.CartLine{} // Empty list, never null
	}
	return lines, nil
}

// Remove drops the line of productID. Removing an absent line succeeds.
func (c *EphemeralCart) Remove(ctx context.Context, productID uint) error {
	err := c.sessions.UpdateCart(ctx, c.sessionID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		kept := lines[:0] // Filter in place
		for _, l := range lines {
			if l.ProductID != productID {
				kept = append(kept, l)
			}
		}
		return kept, nil
	})
	return sessionErr(err)
}

func (c *EphemeralCart) Clear(ctx context.Context) error {
	err := c.sessions.UpdateCart(ctx, c.sessionID, func([]domain.CartLine) ([]domain.CartLine, error) {
		return []domain.CartLine{}, nil
	})
	return sessionErr(err)
}

// Consume subtracts the ordered quantities per product and drops lines that reach zero.
func (c *EphemeralCart) Consume(ctx context.Context, ordered []domain.CartLine) error {
	taken := orderedQuantities(ordered) // Units to remove per product
	err := c.sessions.UpdateCart(ctx, c.sessionID, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		kept := make([]domain.CartLine, 0, len(lines))
		for _, l := range lines {
			l.Quantity -= taken[l.ProductID]
			if l.Quantity > 0 {
				kept = append(kept, l) // Units added after the snapshot survive
			}
		}
		return kept, nil
	})
	return sessionErr(err)
}

// sessionErr maps session store failures. A session that vanished mid-request
// is an authentication failure, anything else is a store failure.
func sessionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation):
		return err // Raised by the update closure itself
	case errors.Is(err, session.ErrNotFound):
		return fmt.Errorf("%w: session expired", domain.ErrAuthentication)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
}

// PersistentCart keeps lines in cart_items, one row per (user, product).
type PersistentCart struct {
	db     *gorm.DB // Database handle, possibly a transaction
	userID uint     // Owning user
}

// NewPersistentCart returns the cart of user userID.
func NewPersistentCart(db *gorm.DB, userID uint) *PersistentCart {
	return &PersistentCart{db: db, userID: userID}
}

func (c *PersistentCart) Regime() string { return RegimePersistent }

// withTx returns the same cart bound to tx.
func (c *PersistentCart) withTx(tx *gorm.DB) *PersistentCart {
	return &PersistentCart{db: tx, userID: c.userID}
}

// Add inserts the line or increments its quantity in one statement, relying
// on the (user_id, product_id) unique index. A merge past MaxLineQuantity is
// rolled back.
func (c *PersistentCart) Add(ctx context.Context, p domain.Product, quantity int) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := domain.CartItem{UserID: c.userID, ProductID: p.ID, Quantity: quantity}
		// Upsert the line atomically
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("quantity + ?", quantity)}),
		}).Create(&item).Error; err != nil {
			return err // Return error to rollback
		}
		// Read back the merged quantity inside the same transaction
		var merged int
		if err := tx.Model(&domain.CartItem{}).
			Select("quantity").
			Where("user_id = ? AND product_id = ?", c.userID, p.ID).
			Scan(&merged).Error; err != nil {
			return err
		}
		if merged > MaxLineQuantity {
			return errLineLimit // Rollback the increment
		}
		return nil // Commit
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
}

// List returns the user's rows joined with current product data, by row id.
func (c *PersistentCart) List(ctx context.Context) ([]domain.CartLine, error) {
	lines := []domain.CartLine{} // Empty list, never null
	err := c.db.WithContext(ctx).
		Table("cart_items AS c").
		Select("c.id, c.user_id, c.product_id, c.quantity, c.added_at, p.name, p.price, p.image, p.brand").
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", c.userID).
		Order("c.id").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return lines, nil
}

// Remove deletes the user's row for productID. Removing an absent row succeeds.
func (c *PersistentCart) Remove(ctx context.Context, productID uint) error {
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", c.userID, productID).
		Delete(&domain.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return nil
}

func (c *PersistentCart) Clear(ctx context.Context) error {
	if err := c.db.WithContext(ctx).Where("user_id = ?", c.userID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return nil
}

// Consume removes the ordered units row by row. A row that grew since the
// snapshot is decremented instead of deleted, and rows that appeared since
// are left alone.
func (c *PersistentCart) Consume(ctx context.Context, ordered []domain.CartLine) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for product, qty := range orderedQuantities(ordered) {
			scope := func() *gorm.DB {
				return tx.Model(&domain.CartItem{}).Where("user_id = ? AND product_id = ?", c.userID, product)
			}
			// Delete the row when nothing beyond the ordered units is left
			res := scope().Where("quantity <= ?", qty).Delete(&domain.CartItem{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}
			// Otherwise keep the units added after the snapshot
			if err := scope().Where("quantity > ?", qty).
				Update("quantity", gorm.Expr("quantity - ?", qty)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return nil
}

// orderedQuantities sums ordered units per product
func orderedQuantities(lines []domain.CartLine) map[uint]int {
	m := make(map[uint]int, len(lines))
	for _, l := range lines {
		m[l.ProductID] += l.Quantity
	}
	return m
}
