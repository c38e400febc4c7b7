package session

import (
	"sync"

	"wompi-harness/internal/model"
)

// PaymentData is the in-flight checkout aggregate shared across the
// checkout, payment and result steps.
type PaymentData struct {
	TransactionID string
	Reference     string
	WidgetConfig  *model.WidgetConfig
	ProductData   *model.Product
	CheckoutData  *model.CheckoutRequest
	Transaction   *model.Transaction
}

// Patch is a shallow merge into PaymentData; nil fields are left untouched.
type Patch struct {
	TransactionID *string
	Reference     *string
	WidgetConfig  *model.WidgetConfig
	ProductData   *model.Product
	CheckoutData  *model.CheckoutRequest
	Transaction   *model.Transaction
}

// Store holds one checkout attempt's PaymentData. In-memory only: a harness
// restart resets it, which is the intended per-run behavior.
type Store struct {
	mu   sync.Mutex
	data PaymentData
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the payment data wholesale.
func (s *Store) Set(data PaymentData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

// Update merges the non-nil patch fields over the current data.
func (s *Store) Update(patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.TransactionID != nil {
		s.data.TransactionID = *patch.TransactionID
	}
	if patch.Reference != nil {
		s.data.Reference = *patch.Reference
	}
	if patch.WidgetConfig != nil {
		s.data.WidgetConfig = patch.WidgetConfig
	}
	if patch.ProductData != nil {
		s.data.ProductData = patch.ProductData
	}
	if patch.CheckoutData != nil {
		s.data.CheckoutData = patch.CheckoutData
	}
	if patch.Transaction != nil {
		s.data.Transaction = patch.Transaction
	}
}

// Snapshot returns the current payment data.
func (s *Store) Snapshot() PaymentData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = PaymentData{}
}

func StringPtr(s string) *string { return &s }
