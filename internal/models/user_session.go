package models

import "time"

// PaymentStatus enumerates the payment states of a user session.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// UserSession ties a phone number to a generated session and its payment state
type UserSession struct {
	ID            string        `json:"id"`
	PhoneNumber   string        `json:"phone_number"`
	SessionLink   *string       `json:"session_link"`
	SessionImages []string      `json:"session_images"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
