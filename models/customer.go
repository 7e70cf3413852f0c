package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a payer, matched by phone number on every checkout initiation.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Phone     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string { return "customer" }

// CustomerInput is the structured customer object accepted by checkout initiation.
type CustomerInput struct {
	Name  string `json:"name" binding:"max=255"`
	Phone string `json:"phone" binding:"required,max=32"`
	Email string `json:"email" binding:"omitempty,email"`
}
