package session

import (
	"testing"

	"wompi-harness/internal/model"
)

func TestStoreUpdateMergesOnlyProvidedFields(t *testing.T) {
	s := NewStore()
	s.Set(PaymentData{
		TransactionID: "txn-1",
		Reference:     "ref-1",
		ProductData:   &model.Product{Sku: "TU-CARRERA-001"},
	})

	s.Update(Patch{Reference: StringPtr("ref-2")})

	got := s.Snapshot()
	if got.Reference != "ref-2" {
		t.Errorf("Reference = %q, want ref-2", got.Reference)
	}
	if got.TransactionID != "txn-1" {
		t.Errorf("TransactionID = %q, untouched field changed", got.TransactionID)
	}
	if got.ProductData == nil || got.ProductData.Sku != "TU-CARRERA-001" {
		t.Errorf("ProductData = %+v, untouched field changed", got.ProductData)
	}
}

func TestStoreUpdateSetsPointerFields(t *testing.T) {
	s := NewStore()
	cfg := &model.WidgetConfig{Reference: "ref-w", AmountInCents: 500000}
	tx := &model.Transaction{ID: "txn-2", Status: model.StatusApproved}

	s.Update(Patch{WidgetConfig: cfg})
	s.Update(Patch{Transaction: tx})

	got := s.Snapshot()
	if got.WidgetConfig != cfg {
		t.Error("WidgetConfig not stored")
	}
	if got.Transaction != tx {
		t.Error("Transaction lost by later partial update")
	}
}

func TestStoreSetReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Set(PaymentData{TransactionID: "txn-1", Reference: "ref-1"})
	s.Set(PaymentData{Reference: "ref-2"})

	got := s.Snapshot()
	if got.TransactionID != "" {
		t.Errorf("TransactionID = %q, want cleared by Set", got.TransactionID)
	}
	if got.Reference != "ref-2" {
		t.Errorf("Reference = %q", got.Reference)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Set(PaymentData{
		TransactionID: "txn-1",
		WidgetConfig:  &model.WidgetConfig{},
		Transaction:   &model.Transaction{},
	})
	s.Clear()

	got := s.Snapshot()
	if got.TransactionID != "" || got.WidgetConfig != nil || got.Transaction != nil {
		t.Errorf("Snapshot after Clear = %+v", got)
	}
}
