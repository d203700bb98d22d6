package domain

import "time"

// Order statuses
const (
	OrderStatusPending = "pending"
)

// Order Model, a frozen snapshot of a cart at checkout
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`                            // Primary key
	UserID          *uint       `gorm:"index" json:"user_id,omitempty"`                  // Nil for the administrative principal
	CustomerEmail   string      `gorm:"size:191;not null;index" json:"customer_email"`   // Email of the buyer
	Total           float64     `gorm:"not null" json:"total"`                           // Sum of line totals
	Status          string      `gorm:"size:32;not null;default:pending" json:"status"`  // Order status
	ShippingAddress string      `gorm:"type:text" json:"shipping_address,omitempty"`     // Free-form address
	PlacedAt        time.Time   `gorm:"autoCreateTime;index" json:"placed_at"`           // Placement timestamp
	Lines           []OrderLine `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines"` // Order lines
}

// OrderLine Model
type OrderLine struct {
	ID        uint    `gorm:"primaryKey" json:"id"`         // Primary key
	OrderID   uint    `gorm:"not null;index" json:"-"`      // Owning order
	ProductID uint    `gorm:"not null" json:"product_id"`   // Product bought
	Name      string  `gorm:"size:191" json:"name"`         // Product name at purchase time
	Quantity  int     `gorm:"not null" json:"quantity"`     // Units bought
	UnitPrice float64 `gorm:"not null" json:"unit_price"`   // Price frozen at purchase time
}
