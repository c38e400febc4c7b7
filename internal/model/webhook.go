package model

// WompiWebhookEvent is the event envelope Wompi delivers to the backend's
// webhook endpoint. The harness builds synthetic ones for webhook simulation.
type WompiWebhookEvent struct {
	Event       string           `json:"event"`
	Data        WebhookData      `json:"data"`
	Environment string           `json:"environment"` // test | production
	Signature   WebhookSignature `json:"signature"`
	Timestamp   int64            `json:"timestamp"`
	SentAt      string           `json:"sent_at"`
}

type WebhookData struct {
	Transaction WebhookTransaction `json:"transaction"`
}

type WebhookTransaction struct {
	ID                string           `json:"id"`
	Status            string           `json:"status"`
	Reference         string           `json:"reference"`
	AmountInCents     int64            `json:"amount_in_cents"`
	Currency          string           `json:"currency"`
	PaymentMethodType string           `json:"payment_method_type"`
	CustomerEmail     string           `json:"customer_email"`
	CreatedAt         string           `json:"created_at"`
	FinalizedAt       string           `json:"finalized_at"`
	PaymentMethod     *PaymentMethod   `json:"payment_method,omitempty"`
	ShippingAddress   *ShippingAddress `json:"shipping_address,omitempty"`
}

type WebhookSignature struct {
	Properties []string `json:"properties"`
	Checksum   string   `json:"checksum"`
}
