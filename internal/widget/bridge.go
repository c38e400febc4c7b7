package widget

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"wompi-harness/internal/model"
	"wompi-harness/internal/nav"
	"wompi-harness/internal/session"
)

// ScriptLoader fetches the hosted widget script once per bridge mount.
type ScriptLoader interface {
	Load(ctx context.Context, url string) error
}

// HTTPScriptLoader confirms the widget script is reachable and serves 200.
type HTTPScriptLoader struct {
	Client *http.Client
}

func (l *HTTPScriptLoader) Load(ctx context.Context, url string) error {
	httpClient := l.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("widget script request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("load widget script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("widget script returned status %d", resp.StatusCode)
	}
	return nil
}

// Result is the widget's completion callback payload. A nil Transaction means
// the user closed the widget without completing payment.
type Result struct {
	Transaction *model.Transaction
}

// Widget is the hosted checkout itself: an external collaborator that manages
// its own UI lifecycle and calls back exactly once, asynchronously.
type Widget interface {
	Open(params *CheckoutParams, callback func(Result)) error
}

// CheckoutParams is the input object the widget is constructed with.
type CheckoutParams struct {
	Currency        string                 `json:"currency"`
	AmountInCents   int64                  `json:"amountInCents"`
	Reference       string                 `json:"reference"`
	PublicKey       string                 `json:"publicKey"`
	Signature       model.Signature        `json:"signature"`
	RedirectURL     string                 `json:"redirectUrl"`
	CustomerData    *model.CustomerData    `json:"customerData,omitempty"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress,omitempty"`
}

// Errors a payment page surfaces as terminal for the step.
var (
	ErrNoWidgetConfig = errors.New("no widget configuration in payment session")
	ErrScriptLoad     = errors.New("Error al cargar el widget de pago")
)

// BuildParams constructs the widget input from the stored configuration.
// A missing public key or integrity signature is a fatal configuration error.
// Form-only name fields are excluded from what the widget sees; it expects a
// single combined full name.
func BuildParams(cfg *model.WidgetConfig, origin string) (*CheckoutParams, error) {
	publicKey := stripQuotes(cfg.PublicKey)
	integrity := stripQuotes(cfg.Signature.Integrity)

	if publicKey == "" {
		return nil, errors.New("Falta la llave pública de Wompi")
	}
	if integrity == "" {
		return nil, errors.New("Falta la firma de integridad del pago")
	}

	currency := cfg.Currency
	if currency == "" {
		currency = "COP"
	}

	params := &CheckoutParams{
		Currency:      currency,
		AmountInCents: cfg.AmountInCents,
		Reference:     cfg.Reference,
		PublicKey:     publicKey,
		Signature:     model.Signature{Integrity: integrity},
		RedirectURL:   strings.TrimRight(origin, "/") + string(nav.RoutePaymentResult),
	}

	if cfg.CustomerData != nil {
		customer := *cfg.CustomerData
		if customer.FullName == "" {
			customer.FullName = strings.TrimSpace(customer.FirstName + " " + customer.LastName)
		}
		customer.FirstName = ""
		customer.LastName = ""
		params.CustomerData = &customer
	}
	if cfg.ShippingAddress != nil {
		shipping := *cfg.ShippingAddress
		params.ShippingAddress = &shipping
	}

	return params, nil
}

func stripQuotes(s string) string {
	return strings.NewReplacer(`"`, "", "'", "").Replace(strings.TrimSpace(s))
}

// Options tune bridge behavior. CancelRedirectDelay is the pause before
// returning home after a cancelled payment.
type Options struct {
	ScriptURL           string
	Origin              string
	CancelRedirectDelay time.Duration
}

// Bridge runs the payment step: it loads the widget script once, opens the
// widget with parameters built from the stored configuration, and interprets
// the single completion callback. Closing the bridge makes late callbacks
// harmless.
type Bridge struct {
	store     *session.Store
	loader    ScriptLoader
	widget    Widget
	navigator nav.Navigator
	opts      Options

	loadOnce sync.Once
	loadErr  error

	mu          sync.Mutex
	closed      bool
	done        bool
	cancelMsg   string
	cancelTimer *time.Timer
}

func NewBridge(store *session.Store, loader ScriptLoader, w Widget, navigator nav.Navigator, opts Options) *Bridge {
	if opts.CancelRedirectDelay == 0 {
		opts.CancelRedirectDelay = 3 * time.Second
	}
	return &Bridge{
		store:     store,
		loader:    loader,
		widget:    w,
		navigator: navigator,
		opts:      opts,
	}
}

// Mount checks the step's precondition and loads the widget script. Without a
// stored widget configuration the flow is sent home.
func (b *Bridge) Mount(ctx context.Context) error {
	if b.store.Snapshot().WidgetConfig == nil {
		b.navigator.Navigate(nav.RouteHome)
		return ErrNoWidgetConfig
	}

	b.loadOnce.Do(func() {
		if err := b.loader.Load(ctx, b.opts.ScriptURL); err != nil {
			b.loadErr = fmt.Errorf("%w: %v", ErrScriptLoad, err)
		}
	})
	return b.loadErr
}

// Open builds the widget parameters and opens the widget. The completion
// callback fires once; a result carrying a transaction moves the flow to the
// result step, a result without one shows the cancellation message and
// returns home after the configured delay.
func (b *Bridge) Open(ctx context.Context) error {
	cfg := b.store.Snapshot().WidgetConfig
	if cfg == nil {
		b.navigator.Navigate(nav.RouteHome)
		return ErrNoWidgetConfig
	}
	if b.loadErr != nil {
		return b.loadErr
	}

	params, err := BuildParams(cfg, b.opts.Origin)
	if err != nil {
		return err
	}

	return b.widget.Open(params, b.handleResult)
}

func (b *Bridge) handleResult(result Result) {
	b.mu.Lock()
	if b.closed || b.done {
		b.mu.Unlock()
		return
	}
	b.done = true

	if result.Transaction == nil {
		b.cancelMsg = "Pago cancelado por el usuario"
		b.cancelTimer = time.AfterFunc(b.opts.CancelRedirectDelay, func() {
			b.mu.Lock()
			closed := b.closed
			b.mu.Unlock()
			if !closed {
				b.navigator.Navigate(nav.RouteHome)
			}
		})
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	tx := result.Transaction
	b.store.Update(session.Patch{
		TransactionID: session.StringPtr(tx.ID),
		Reference:     session.StringPtr(tx.Reference),
		Transaction:   tx,
	})
	b.navigator.Navigate(nav.RoutePaymentResult)
}

// CancelMessage returns the cancellation notice, when the widget was closed
// without a payment.
func (b *Bridge) CancelMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelMsg
}

// Close tears the bridge down. In-flight widget callbacks and the pending
// cancel redirect become no-ops.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.cancelTimer != nil {
		b.cancelTimer.Stop()
	}
}
