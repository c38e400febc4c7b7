package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/datagen"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/nav"
	"wompi-harness/internal/service"
	"wompi-harness/internal/session"
	"wompi-harness/internal/widget"
)

// Scenario is one headless walk through the checkout flow.
type Scenario struct {
	Name            string `yaml:"name"`
	Sku             string `yaml:"sku,omitempty"`
	Email           string `yaml:"email,omitempty"`
	Password        string `yaml:"password,omitempty"`
	Coupon          string `yaml:"coupon,omitempty"`
	RemoveCoupon    bool   `yaml:"remove_coupon,omitempty"`
	CancelAtWidget  bool   `yaml:"cancel_at_widget,omitempty"`
	SimulateWebhook bool   `yaml:"simulate_webhook,omitempty"`
	ExpectStatus    string `yaml:"expect_status,omitempty"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios parses a scenario YAML file.
func LoadScenarios(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, errors.New("scenario file has no scenarios")
	}
	return file.Scenarios, nil
}

// Report is the outcome of one scenario run.
type Report struct {
	Scenario      string
	Routes        []nav.Route
	Outcome       *service.VerifyOutcome
	CancelMessage string
	Notice        string
	WebhookSent   bool
}

// Runner drives the whole state machine without a browser, using the
// simulated widget. It implements nav.Navigator to observe step transitions.
type Runner struct {
	sessions *identity.Manager
	checkout *service.CheckoutService
	verify   *service.VerifyService
	store    *session.Store
	loader   widget.ScriptLoader
	gen      *datagen.Generator
	opts     widget.Options

	mu      sync.Mutex
	routes  []nav.Route
	routeCh chan nav.Route
}

func NewRunner(
	sessions *identity.Manager,
	checkout *service.CheckoutService,
	verify *service.VerifyService,
	store *session.Store,
	loader widget.ScriptLoader,
	gen *datagen.Generator,
	opts widget.Options,
) *Runner {
	return &Runner{
		sessions: sessions,
		checkout: checkout,
		verify:   verify,
		store:    store,
		loader:   loader,
		gen:      gen,
		opts:     opts,
		routeCh:  make(chan nav.Route, 8),
	}
}

// Navigate records a step transition.
func (r *Runner) Navigate(route nav.Route) {
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()

	select {
	case r.routeCh <- route:
	default:
	}
}

// Run walks one scenario end to end.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Report, error) {
	report := &Report{Scenario: sc.Name}

	sess, err := r.signIn(ctx, sc)
	if err != nil {
		return report, fmt.Errorf("sign in: %w", err)
	}
	log.Printf("flow %q: signed in as %s", sc.Name, sess.Email)

	r.checkout.UseSKU(sc.Sku)

	start, err := r.checkout.StartTest(ctx, sess)
	if err != nil {
		return report, fmt.Errorf("start test: %w", err)
	}
	r.Navigate(start.Route)

	if start.Route != nav.RouteCheckout {
		report.Notice = start.Notice
		report.Routes = r.Routes()
		return report, nil
	}

	if sc.Coupon != "" {
		if _, err := r.checkout.ApplyCoupon(ctx, sess, sc.Coupon); err != nil {
			return report, fmt.Errorf("apply coupon: %w", err)
		}
		if sc.RemoveCoupon {
			if _, err := r.checkout.RemoveCoupon(); err != nil {
				return report, fmt.Errorf("remove coupon: %w", err)
			}
		}
	}

	route, err := r.checkout.Submit(ctx, sess)
	if err != nil {
		return report, fmt.Errorf("submit checkout: %w", err)
	}
	r.Navigate(route)

	if route == nav.RoutePayment {
		route, report.CancelMessage, err = r.runWidget(ctx, sc)
		if err != nil {
			return report, err
		}
	}

	if route == nav.RoutePaymentResult {
		outcome, err := r.verify.Verify(ctx, sess, "")
		if err != nil {
			return report, fmt.Errorf("verify transaction: %w", err)
		}
		report.Outcome = outcome

		if sc.SimulateWebhook {
			if _, err := r.verify.SimulateWebhook(ctx, ""); err != nil {
				apperr.LogError(err, "simulateWebhook")
			} else {
				report.WebhookSent = true
			}
		}

		if sc.ExpectStatus != "" && outcome.Status != sc.ExpectStatus {
			report.Routes = r.Routes()
			return report, fmt.Errorf("expected status %s, got %s", sc.ExpectStatus, outcome.Status)
		}
	}

	report.Routes = r.Routes()
	return report, nil
}

func (r *Runner) signIn(ctx context.Context, sc Scenario) (*identity.Session, error) {
	email, password := sc.Email, sc.Password
	if email == "" {
		userData := r.gen.UserData()
		email, password = userData.Email, userData.Password
	}

	sess, err := r.sessions.SignUp(ctx, email, password)
	if err == nil {
		return sess, nil
	}

	// Re-run against an existing account.
	var idErr *apperr.IdentityError
	if errors.As(err, &idErr) && idErr.Code == "auth/email-already-in-use" {
		return r.sessions.SignIn(ctx, email, password)
	}
	return nil, err
}

func (r *Runner) runWidget(ctx context.Context, sc Scenario) (nav.Route, string, error) {
	// Drop transitions recorded before the widget step; only the bridge's
	// asynchronous navigation matters here.
	for {
		select {
		case <-r.routeCh:
			continue
		default:
		}
		break
	}

	bridge := widget.NewBridge(r.store, r.loader, &widget.SimulatedWidget{Cancel: sc.CancelAtWidget}, r, r.opts)
	defer bridge.Close()

	if err := bridge.Mount(ctx); err != nil {
		return nav.RouteHome, "", fmt.Errorf("mount widget bridge: %w", err)
	}
	if err := bridge.Open(ctx); err != nil {
		return nav.RouteHome, "", fmt.Errorf("open widget: %w", err)
	}

	// Cancellation navigates home only after the redirect delay.
	wait := r.opts.CancelRedirectDelay + 30*time.Second
	select {
	case route := <-r.routeCh:
		return route, bridge.CancelMessage(), nil
	case <-time.After(wait):
		return nav.RouteHome, "", errors.New("widget never completed")
	case <-ctx.Done():
		return nav.RouteHome, "", ctx.Err()
	}
}

// Routes returns the recorded step transitions.
func (r *Runner) Routes() []nav.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	routes := make([]nav.Route, len(r.routes))
	copy(routes, r.routes)
	return routes
}
