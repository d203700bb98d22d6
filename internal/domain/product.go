package domain

import (
	"encoding/json"
	"time"
)

// DefaultCategory is applied to products created without a category.
const DefaultCategory = "classic"

// Product Model
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`                         // Primary key
	Name          string    `gorm:"size:191;not null" json:"name"`                // Product name
	Description   string    `gorm:"type:text" json:"description"`                 // Long description
	Price         float64   `gorm:"not null" json:"price"`                        // Current price
	PreviousPrice *float64  `json:"previous_price,omitempty"`                     // Set when the product is on sale
	Brand         string    `gorm:"size:120;not null" json:"brand"`               // Brand
	Category      string    `gorm:"size:60;default:classic" json:"category"`      // Category
	Image         string    `gorm:"size:512" json:"image"`                        // Image URL
	Stock         int       `gorm:"not null;default:10" json:"stock"`             // Informational stock count
	Featured      bool      `gorm:"not null;default:false;index" json:"featured"` // Featured products list first
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`             // Creation timestamp
}

// OnSale reports whether the product carries a previous price.
func (p Product) OnSale() bool {
	return p.PreviousPrice != nil
}

// MarshalJSON adds the derived on_sale flag.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		OnSale bool `json:"on_sale"`
	}{product(p), p.OnSale()})
}
