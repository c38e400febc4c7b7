package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wompi-harness/internal/identity"
	"wompi-harness/internal/model"
	"wompi-harness/internal/session"
)

// Alert levels for verification outcomes.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// VerifyOutcome is what the result step renders after a verification call.
type VerifyOutcome struct {
	Status  string
	Message string
	Level   string
	Result  *model.TransactionCheckResult
}

// VerifyService resolves and verifies the transaction behind the result step,
// and builds the test-only synthetic webhook.
type VerifyService struct {
	payments PaymentService
	store    *session.Store
	now      func() time.Time
}

func NewVerifyService(payments PaymentService, store *session.Store) *VerifyService {
	return &VerifyService{
		payments: payments,
		store:    store,
		now:      time.Now,
	}
}

// Verify checks the transaction's status once. The transaction comes either
// from memory (navigated from the widget) or from the URL identifier
// (reload/direct link); with neither, ErrRedirectHome is returned. In the
// URL-driven case the checkout reference is resolved from the backend first,
// since a user has at most one in-flight reference.
func (s *VerifyService) Verify(ctx context.Context, sess *identity.Session, urlTransactionID string) (*VerifyOutcome, error) {
	if sess == nil {
		return nil, errors.New("Usuario no autenticado")
	}

	data := s.store.Snapshot()

	transactionID := data.TransactionID
	reference := data.Reference
	if transactionID == "" && data.Transaction != nil {
		transactionID = data.Transaction.ID
		reference = data.Transaction.Reference
	}

	if transactionID == "" || reference == "" {
		if urlTransactionID == "" {
			return nil, ErrRedirectHome
		}

		refResp, err := s.payments.PaymentReference(ctx, sess.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve payment reference: %w", err)
		}
		if !refResp.Success || refResp.Data == nil || refResp.Data.Reference == "" {
			return nil, errors.New("No se pudo obtener la referencia de pago")
		}

		transactionID = urlTransactionID
		reference = refResp.Data.Reference
	}

	resp, err := s.payments.CheckTransaction(ctx, sess.UserID, &model.TransactionCheckRequest{
		TransactionID: transactionID,
		Reference:     reference,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, errors.New(orDefault(resp.Error, "Error al verificar transacción"))
	}

	outcome := outcomeForStatus(resp.Data.Status)
	outcome.Result = resp.Data
	return outcome, nil
}

func outcomeForStatus(status string) *VerifyOutcome {
	switch status {
	case model.StatusApproved:
		return &VerifyOutcome{Status: status, Level: LevelSuccess, Message: "Transacción aprobada"}
	case model.StatusPending:
		return &VerifyOutcome{Status: status, Level: LevelInfo, Message: "Transacción pendiente de confirmación"}
	case model.StatusDeclined:
		return &VerifyOutcome{Status: status, Level: LevelError, Message: "Transacción rechazada"}
	case model.StatusError:
		return &VerifyOutcome{Status: status, Level: LevelError, Message: "Error en la transacción"}
	default:
		return &VerifyOutcome{Status: status, Level: LevelInfo, Message: "Estado de la transacción: " + status}
	}
}

// SimulateWebhook builds a synthetic transaction.updated event from the
// best-known transaction data, preferring the URL-supplied id, and posts it
// to the backend's webhook endpoint with the fixed test signature header.
func (s *VerifyService) SimulateWebhook(ctx context.Context, urlTransactionID string) (map[string]any, error) {
	data := s.store.Snapshot()

	transactionID := urlTransactionID
	if transactionID == "" {
		transactionID = data.TransactionID
	}
	if transactionID == "" && data.Transaction != nil {
		transactionID = data.Transaction.ID
	}
	if transactionID == "" {
		return nil, errors.New("No hay una transacción para simular")
	}

	reference := data.Reference
	if reference == "" && data.Transaction != nil {
		reference = data.Transaction.Reference
	}

	var amountInCents int64
	if data.Transaction != nil {
		amountInCents = data.Transaction.AmountInCents
	}
	if amountInCents == 0 && data.WidgetConfig != nil {
		amountInCents = data.WidgetConfig.AmountInCents
	}

	var customerEmail string
	var shippingAddress *model.ShippingAddress
	if data.CheckoutData != nil {
		customerEmail = data.CheckoutData.CustomerData.Email
		shipping := data.CheckoutData.ShippingAddress
		shippingAddress = &shipping
	}

	now := s.now().UTC()
	event := &model.WompiWebhookEvent{
		Event: "transaction.updated",
		Data: model.WebhookData{
			Transaction: model.WebhookTransaction{
				ID:                transactionID,
				Status:            model.StatusApproved,
				Reference:         reference,
				AmountInCents:     amountInCents,
				Currency:          "COP",
				PaymentMethodType: "CARD",
				CustomerEmail:     customerEmail,
				CreatedAt:         now.Format(time.RFC3339),
				FinalizedAt:       now.Format(time.RFC3339),
				PaymentMethod: &model.PaymentMethod{
					Type: "CARD",
					Extra: map[string]any{
						"brand":     "VISA",
						"last_four": "4242",
					},
				},
				ShippingAddress: shippingAddress,
			},
		},
		Environment: "test",
		Signature: model.WebhookSignature{
			Properties: []string{
				"transaction.id",
				"transaction.status",
				"transaction.amount_in_cents",
			},
			Checksum: "test_checksum",
		},
		Timestamp: now.UnixMilli(),
		SentAt:    now.Format(time.RFC3339),
	}

	signature := fmt.Sprintf("sig_alg=sha256 sig=test_signature timestamp=%d", now.UnixMilli())
	return s.payments.SimulateWebhook(ctx, event, signature)
}
