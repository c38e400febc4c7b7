package dto

import "wompi-harness/internal/model"

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// RegisterSuggestion pre-fills the register form with generated credentials.
type RegisterSuggestion struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CouponRequest struct {
	Code string `json:"code"`
}

type CheckoutSubmitRequest struct {
	CustomerData    *model.CustomerData    `json:"customerData,omitempty"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress,omitempty"`
}

type CheckoutFormView struct {
	Sku             string                `json:"sku"`
	CouponCode      string                `json:"couponCode,omitempty"`
	CouponApplied   bool                  `json:"couponApplied"`
	CustomerData    model.CustomerData    `json:"customerData"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	Product         *model.Product        `json:"product,omitempty"`
}

type StartResponse struct {
	Redirect string         `json:"redirect,omitempty"`
	Notice   string         `json:"notice,omitempty"`
	Product  *model.Product `json:"product,omitempty"`
}

// RedirectResponse points the client at its next step. RedirectDelayMs is
// non-zero when the move should happen after a pause (widget cancellation).
type RedirectResponse struct {
	Redirect        string `json:"redirect"`
	Message         string `json:"message,omitempty"`
	RedirectDelayMs int64  `json:"redirectDelayMs,omitempty"`
}

// CompleteRequest is the widget completion callback payload; Transaction is
// absent when the user closed the widget without paying.
type CompleteRequest struct {
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

// ErrorResponse mirrors the normalized error for page-level alerts. CanCancel
// marks the 409 case where a cancel-and-retry affordance applies.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Status    int    `json:"status,omitempty"`
	CanCancel bool   `json:"canCancel,omitempty"`
}
