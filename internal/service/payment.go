package service

import (
	"context"
	"fmt"
	"net/url"

	"wompi-harness/internal/client"
	"wompi-harness/internal/model"
)

// PaymentService is the typed surface over the backend's payment API.
type PaymentService interface {
	GetProduct(ctx context.Context, sku, userID, couponCode string) (*model.ProductResponse, error)
	Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
	CancelTransaction(ctx context.Context, userID string) (*model.CancelResponse, error)
	CheckTransaction(ctx context.Context, userID string, req *model.TransactionCheckRequest) (*model.TransactionCheckResponse, error)
	PaymentReference(ctx context.Context, userID string) (*model.ReferenceResponse, error)
	SimulateWebhook(ctx context.Context, event *model.WompiWebhookEvent, signature string) (map[string]any, error)
}

type paymentServiceImpl struct {
	backend client.BackendClient
}

func NewPaymentService(backend client.BackendClient) PaymentService {
	return &paymentServiceImpl{backend: backend}
}

func (s *paymentServiceImpl) GetProduct(ctx context.Context, sku, userID, couponCode string) (*model.ProductResponse, error) {
	endpoint := fmt.Sprintf("/products/%s/users/%s", sku, userID)
	if couponCode != "" {
		endpoint += "?coupon_code=" + url.QueryEscape(couponCode)
	}

	var resp model.ProductResponse
	if err := s.backend.Get(ctx, endpoint, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *paymentServiceImpl) Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	var resp model.CheckoutResponse
	endpoint := fmt.Sprintf("/payments/users/%s/checkout", userID)
	if err := s.backend.Post(ctx, endpoint, req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *paymentServiceImpl) CancelTransaction(ctx context.Context, userID string) (*model.CancelResponse, error) {
	var resp model.CancelResponse
	endpoint := fmt.Sprintf("/payments/users/%s/cancel", userID)
	if err := s.backend.Post(ctx, endpoint, nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *paymentServiceImpl) CheckTransaction(ctx context.Context, userID string, req *model.TransactionCheckRequest) (*model.TransactionCheckResponse, error) {
	var resp model.TransactionCheckResponse
	endpoint := fmt.Sprintf("/payments/users/%s/check-transaction", userID)
	if err := s.backend.Post(ctx, endpoint, req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *paymentServiceImpl) PaymentReference(ctx context.Context, userID string) (*model.ReferenceResponse, error) {
	var resp model.ReferenceResponse
	endpoint := fmt.Sprintf("/payments/users/%s/reference", userID)
	if err := s.backend.Get(ctx, endpoint, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SimulateWebhook posts a synthetic gateway notification to the backend's
// webhook endpoint. Unauthenticated on purpose: real webhook deliveries carry
// only the signature header.
func (s *paymentServiceImpl) SimulateWebhook(ctx context.Context, event *model.WompiWebhookEvent, signature string) (map[string]any, error) {
	var resp map[string]any
	err := s.backend.Post(ctx, "/payments/webhook", event, &resp, &client.RequestOptions{
		SkipAuth: true,
		Headers: map[string]string{
			"x-wompi-signature": signature,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
