package flow

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/client"
	"wompi-harness/internal/datagen"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/model"
	"wompi-harness/internal/nav"
	"wompi-harness/internal/service"
	"wompi-harness/internal/session"
	"wompi-harness/internal/widget"
)

type identityClientStub struct {
	existing map[string]bool
}

func (s *identityClientStub) SignUp(ctx context.Context, email, password string) (*client.AuthResult, error) {
	if s.existing[email] {
		return nil, &apperr.IdentityError{Code: "auth/email-already-in-use", Message: "EMAIL_EXISTS"}
	}
	return s.result(email), nil
}

func (s *identityClientStub) SignIn(ctx context.Context, email, password string) (*client.AuthResult, error) {
	return s.result(email), nil
}

func (s *identityClientStub) result(email string) *client.AuthResult {
	return &client.AuthResult{
		UserID:    "uid-1",
		Email:     email,
		IDToken:   "tok",
		ExpiresIn: time.Hour,
	}
}

type paymentStub struct {
	widgetConfig   *model.WidgetConfig
	checkStatus    string
	webhookEvents  []*model.WompiWebhookEvent
	checkoutCalled bool
}

func (s *paymentStub) GetProduct(ctx context.Context, sku, userID, couponCode string) (*model.ProductResponse, error) {
	return &model.ProductResponse{
		Success: true,
		Payment: true,
		Product: &model.Product{Sku: sku, TotalCents: 500000, Enabled: true},
	}, nil
}

func (s *paymentStub) Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	s.checkoutCalled = true
	return &model.CheckoutResponse{Success: true, Payment: true, Data: s.widgetConfig}, nil
}

func (s *paymentStub) CancelTransaction(ctx context.Context, userID string) (*model.CancelResponse, error) {
	return &model.CancelResponse{Success: true}, nil
}

func (s *paymentStub) CheckTransaction(ctx context.Context, userID string, req *model.TransactionCheckRequest) (*model.TransactionCheckResponse, error) {
	status := s.checkStatus
	if status == "" {
		status = model.StatusApproved
	}
	return &model.TransactionCheckResponse{
		Success: true,
		Data: &model.TransactionCheckResult{
			ID:        req.TransactionID,
			Reference: req.Reference,
			Status:    status,
		},
	}, nil
}

func (s *paymentStub) PaymentReference(ctx context.Context, userID string) (*model.ReferenceResponse, error) {
	return &model.ReferenceResponse{Success: true, Data: &model.ReferenceResult{Reference: "ref-1", UserID: userID}}, nil
}

func (s *paymentStub) SimulateWebhook(ctx context.Context, event *model.WompiWebhookEvent, signature string) (map[string]any, error) {
	s.webhookEvents = append(s.webhookEvents, event)
	return map[string]any{"received": true}, nil
}

type profileStub struct{}

func (profileStub) Save(ctx context.Context, profile *model.CustomerProfile) error { return nil }
func (profileStub) Get(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	return nil, nil
}
func (profileStub) SaveLastReference(ctx context.Context, userID, reference string) error { return nil }
func (profileStub) LastReference(ctx context.Context, userID string) (string, error)      { return "", nil }
func (profileStub) Clear(ctx context.Context, userID string) error                        { return nil }
func (profileStub) ClearAll(ctx context.Context) error                                    { return nil }

type noopLoader struct{}

func (noopLoader) Load(ctx context.Context, url string) error { return nil }

func newTestRunner(payments *paymentStub) *Runner {
	store := session.NewStore()
	sessions := identity.NewManager(&identityClientStub{})
	sessions.Start()

	gen := datagen.New(rand.NewSource(1), "Test1234*")
	checkout := service.NewCheckoutService(payments, store, profileStub{}, gen, "TU-CARRERA-001", "")
	verify := service.NewVerifyService(payments, store)

	return NewRunner(sessions, checkout, verify, store, noopLoader{}, gen, widget.Options{
		ScriptURL:           "http://localhost/widget.js",
		Origin:              "http://localhost:8080",
		CancelRedirectDelay: 20 * time.Millisecond,
	})
}

func TestLoadScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := `scenarios:
  - name: happy path
    simulate_webhook: true
    expect_status: APPROVED
  - name: cancelled
    cancel_at_widget: true
  - name: coupon run
    sku: OTRO-SKU-002
    coupon: MITAD50
    remove_coupon: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	scenarios, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("LoadScenarios() error = %v", err)
	}
	if len(scenarios) != 3 {
		t.Fatalf("len = %d", len(scenarios))
	}
	if scenarios[0].Name != "happy path" || !scenarios[0].SimulateWebhook || scenarios[0].ExpectStatus != "APPROVED" {
		t.Errorf("scenario 0 = %+v", scenarios[0])
	}
	if !scenarios[1].CancelAtWidget {
		t.Errorf("scenario 1 = %+v", scenarios[1])
	}
	if scenarios[2].Sku != "OTRO-SKU-002" || scenarios[2].Coupon != "MITAD50" || !scenarios[2].RemoveCoupon {
		t.Errorf("scenario 2 = %+v", scenarios[2])
	}
}

func TestLoadScenariosEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("scenarios: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenarios(path); err == nil {
		t.Error("LoadScenarios() error = nil for an empty set")
	}
}

func TestRunHappyPath(t *testing.T) {
	payments := &paymentStub{
		widgetConfig: &model.WidgetConfig{
			Currency:      "COP",
			Reference:     "ref-1",
			PublicKey:     "pub_test_key",
			AmountInCents: 500000,
			Signature:     model.Signature{Integrity: "integrity-1"},
		},
	}
	runner := newTestRunner(payments)

	report, err := runner.Run(context.Background(), Scenario{
		Name:            "happy",
		SimulateWebhook: true,
		ExpectStatus:    model.StatusApproved,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Outcome == nil || report.Outcome.Status != model.StatusApproved {
		t.Errorf("Outcome = %+v", report.Outcome)
	}
	if !report.WebhookSent || len(payments.webhookEvents) != 1 {
		t.Errorf("webhook not sent: %v", payments.webhookEvents)
	}
	if !payments.checkoutCalled {
		t.Error("checkout never submitted")
	}

	want := []nav.Route{nav.RouteCheckout, nav.RoutePayment, nav.RoutePaymentResult}
	if len(report.Routes) != len(want) {
		t.Fatalf("Routes = %v", report.Routes)
	}
	for i, route := range want {
		if report.Routes[i] != route {
			t.Errorf("Routes[%d] = %q, want %q", i, report.Routes[i], route)
		}
	}
}

func TestRunCancelAtWidget(t *testing.T) {
	payments := &paymentStub{
		widgetConfig: &model.WidgetConfig{
			PublicKey: "pub_test_key",
			Signature: model.Signature{Integrity: "integrity-1"},
		},
	}
	runner := newTestRunner(payments)

	report, err := runner.Run(context.Background(), Scenario{Name: "cancelled", CancelAtWidget: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.CancelMessage != "Pago cancelado por el usuario" {
		t.Errorf("CancelMessage = %q", report.CancelMessage)
	}
	if report.Outcome != nil {
		t.Errorf("Outcome = %+v, cancelled run must not verify", report.Outcome)
	}

	routes := report.Routes
	if len(routes) == 0 || routes[len(routes)-1] != nav.RouteHome {
		t.Errorf("Routes = %v, want final return home", routes)
	}
}

func TestRunExpectStatusMismatch(t *testing.T) {
	payments := &paymentStub{
		widgetConfig: &model.WidgetConfig{
			PublicKey: "pub_test_key",
			Signature: model.Signature{Integrity: "integrity-1"},
		},
		checkStatus: model.StatusDeclined,
	}
	runner := newTestRunner(payments)

	_, err := runner.Run(context.Background(), Scenario{Name: "strict", ExpectStatus: model.StatusApproved})
	if err == nil {
		t.Error("Run() error = nil on status mismatch")
	}
}

func TestRunExistingAccountFallsBackToSignIn(t *testing.T) {
	payments := &paymentStub{
		widgetConfig: &model.WidgetConfig{
			PublicKey: "pub_test_key",
			Signature: model.Signature{Integrity: "integrity-1"},
		},
	}
	store := session.NewStore()
	sessions := identity.NewManager(&identityClientStub{existing: map[string]bool{"reuse@example.com": true}})
	sessions.Start()
	gen := datagen.New(rand.NewSource(1), "Test1234*")
	checkout := service.NewCheckoutService(payments, store, profileStub{}, gen, "TU-CARRERA-001", "")
	verify := service.NewVerifyService(payments, store)
	runner := NewRunner(sessions, checkout, verify, store, noopLoader{}, gen, widget.Options{
		CancelRedirectDelay: 20 * time.Millisecond,
	})

	report, err := runner.Run(context.Background(), Scenario{
		Name:     "reuse",
		Email:    "reuse@example.com",
		Password: "Test1234*",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcome == nil {
		t.Error("no outcome for reused account")
	}
}
