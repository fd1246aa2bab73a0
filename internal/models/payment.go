package models

import (
	"time"
)

type CreditPackage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Credits     int       `json:"credits" gorm:"not null"`
	EventLimit  int       `json:"event_limit" gorm:"not null"`
	PhotoLimit  int       `json:"photo_limit" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	StripePrice string    `json:"-"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserCreditPurchase struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	CreditPackageID uint      `json:"credit_package_id" gorm:"not null"`
	StripeSessionID string    `json:"-" gorm:"uniqueIndex"`
	AmountPaid      float64   `json:"amount_paid"`
	Status          string    `json:"status" gorm:"default:pending"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}
