package model

// Product is the purchasable SKU snapshot returned by the backend. It is
// fetched fresh on every coupon check and never mutated locally.
type Product struct {
	Sku          string  `json:"sku"`
	Name         string  `json:"name"`
	Cost         float64 `json:"cost"`
	CostCents    int64   `json:"cost_cents"`
	CurrencyCode string  `json:"currency_code"`
	Total        float64 `json:"total"`
	TotalCents   int64   `json:"total_cents"`
	Enabled      bool    `json:"enabled"`
	Price        float64 `json:"price,omitempty"`
	Discount     float64 `json:"discount,omitempty"`
}

// CustomerData is the checkout form payload. FirstName and LastName exist
// only for the local form; the widget receives the combined FullName.
type CustomerData struct {
	Email             string `json:"email"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	FullName          string `json:"fullName"`
	PhoneNumber       string `json:"phoneNumber"`
	PhoneNumberPrefix string `json:"phoneNumberPrefix,omitempty"`
	LegalID           string `json:"legalId"`
	LegalIDType       string `json:"legalIdType"`
}

type ShippingAddress struct {
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
}

// CheckoutRequest is the payment-initiation payload sent once per submission.
type CheckoutRequest struct {
	Sku             string          `json:"sku"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	CustomerData    CustomerData    `json:"customerData"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

type Signature struct {
	Integrity string `json:"integrity"`
}

// WidgetConfig holds the hosted-widget bootstrap parameters produced by the
// backend in the checkout response.
type WidgetConfig struct {
	Currency        string           `json:"currency"`
	Reference       string           `json:"reference"`
	PublicKey       string           `json:"publicKey"`
	AmountInCents   int64            `json:"amountInCents"`
	RedirectURL     string           `json:"redirectUrl,omitempty"`
	Timestamp       int64            `json:"timestamp,omitempty"`
	Signature       Signature        `json:"signature"`
	CustomerData    *CustomerData    `json:"customerData,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// Transaction statuses reported by Wompi.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusDeclined = "DECLINED"
	StatusVoided   = "VOIDED"
	StatusError    = "ERROR"
)

// Transaction is the payment outcome record, created by the widget completion
// callback or a URL-driven lookup and refined by verification.
type Transaction struct {
	ID                string         `json:"id"`
	Reference         string         `json:"reference"`
	Status            string         `json:"status"`
	AmountInCents     int64          `json:"amount_in_cents,omitempty"`
	Currency          string         `json:"currency,omitempty"`
	PaymentMethodType string         `json:"payment_method_type,omitempty"`
	CustomerEmail     string         `json:"customer_email,omitempty"`
	PaymentMethod     *PaymentMethod `json:"payment_method,omitempty"`
}

type PaymentMethod struct {
	Type  string         `json:"type"`
	Extra map[string]any `json:"extra,omitempty"`
}

// Backend response envelopes.

type ProductResponse struct {
	Success bool     `json:"success"`
	Payment bool     `json:"payment"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
}

type CheckoutResponse struct {
	Success bool          `json:"success"`
	Payment bool          `json:"payment"`
	Data    *WidgetConfig `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type TransactionCheckRequest struct {
	TransactionID string `json:"transactionId"`
	Reference     string `json:"reference"`
}

type TransactionCheckResult struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type TransactionCheckResponse struct {
	Success bool                    `json:"success"`
	Data    *TransactionCheckResult `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type ReferenceResult struct {
	Reference string `json:"reference"`
	UserID    string `json:"userId"`
}

type ReferenceResponse struct {
	Success bool             `json:"success"`
	Data    *ReferenceResult `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}
