package model

import "time"

// CustomerProfile keeps the generated customer data per user so later checkout
// attempts can reuse it instead of starting from scratch.
type CustomerProfile struct {
	UserID               string `gorm:"primaryKey;size:64;not null"`
	Email                string `gorm:"size:128"`
	FirstName            string `gorm:"size:64"`
	LastName             string `gorm:"size:64"`
	FullName             string `gorm:"size:128"`
	PhoneNumber          string `gorm:"size:16"`
	LegalID              string `gorm:"size:32"`
	LegalIDType          string `gorm:"size:8"`
	LastPaymentReference string `gorm:"size:128;index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
