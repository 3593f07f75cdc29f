package models

import (
	"time"

	"github.com/google/uuid"
)

// User owns appliances. Accounts are created at signup; the id never changes.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
