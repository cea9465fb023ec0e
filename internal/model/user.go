package model

import "time"

// User represents an authenticated user in the system.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	// MerchantCustomerID is the stable customer id used with the GIDX service.
	// Created once on first use, never changed afterwards.
	MerchantCustomerID *string   `json:"merchant_customer_id,omitempty" gorm:"size:36;uniqueIndex"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasMerchantCustomerID reports whether the user is known to the provider.
func (u *User) HasMerchantCustomerID() bool {
	return u.MerchantCustomerID != nil && *u.MerchantCustomerID != ""
}
