package domain

import "time"

// User Model
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                                                  // Primary key
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`                            // Unique, stored lower-cased
	Password     string     `gorm:"not null" json:"-"`                                                     // Bcrypt hash
	Name         string     `gorm:"size:120;not null" json:"name"`                                         // Display name
	Phone        *string    `gorm:"size:40" json:"phone,omitempty"`                                        // Optional phone
	RegisteredAt time.Time  `gorm:"autoCreateTime" json:"registered_at"`                                   // Registration timestamp
	Active       bool       `gorm:"not null;default:true" json:"active"`                                   // Inactive users cannot log in
	CartItems    []CartItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`                // Persistent cart lines
	Orders       []Order    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // Placed orders
}
