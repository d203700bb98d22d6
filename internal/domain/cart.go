package domain

import "time"

// CartItem Model, one row per (user, product) pair of a registered principal's cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                 // Primary key
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`            // Owning user
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`         // Product in the cart
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0" json:"quantity"` // Always positive
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`                                       // First add timestamp
	Product   Product   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`               // Product relation
}

// CartLine is the read model of a cart line. Ephemeral lines carry a snapshot of the
// product taken when the line was created; persistent lines are joined at read time
// and additionally carry their row id, owner and timestamp.
type CartLine struct {
	ID        uint       `json:"id,omitempty"`
	UserID    uint       `json:"user_id,omitempty"`
	ProductID uint       `json:"product_id"`
	Quantity  int        `json:"quantity"`
	AddedAt   *time.Time `json:"added_at,omitempty"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	Image     string     `json:"image"`
	Brand     string     `json:"brand"`
}
