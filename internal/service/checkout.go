package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/datagen"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/model"
	"wompi-harness/internal/nav"
	"wompi-harness/internal/repository"
	"wompi-harness/internal/session"
)

// ErrRedirectHome is returned when a step's preconditions are missing and the
// flow must fall back to the home step.
var ErrRedirectHome = errors.New("missing checkout state")

// CheckoutForm is the page state of the checkout step.
type CheckoutForm struct {
	Sku             string
	CouponCode      string
	CouponApplied   bool
	Customer        model.CustomerData
	Shipping        model.ShippingAddress
	Product         *model.Product
	OriginalProduct *model.Product
}

// StartResult is the home step's outcome: where to go next, and the product
// when a checkout is due.
type StartResult struct {
	Route   nav.Route
	Product *model.Product
	Notice  string
}

// CheckoutService drives the checkout step: product entry, auto-filled form,
// coupon application and submission, branching to the payment step or, when
// the backend decides no payment is due, straight to the result step.
type CheckoutService struct {
	payments PaymentService
	store    *session.Store
	profiles repository.ProfileRepository
	gen      *datagen.Generator

	testSKU    string
	testCoupon string

	mu          sync.Mutex
	skuOverride string
	form        *CheckoutForm
}

func NewCheckoutService(
	payments PaymentService,
	store *session.Store,
	profiles repository.ProfileRepository,
	gen *datagen.Generator,
	testSKU, testCoupon string,
) *CheckoutService {
	return &CheckoutService{
		payments:   payments,
		store:      store,
		profiles:   profiles,
		gen:        gen,
		testSKU:    testSKU,
		testCoupon: testCoupon,
	}
}

// UseSKU overrides the configured test product for the next runs. An empty
// value restores the configured default.
func (s *CheckoutService) UseSKU(sku string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skuOverride = sku
}

// StartTest fetches the configured test product and decides the next step.
func (s *CheckoutService) StartTest(ctx context.Context, sess *identity.Session) (*StartResult, error) {
	if sess == nil {
		return &StartResult{Route: nav.RouteLogin}, nil
	}

	s.mu.Lock()
	sku := s.testSKU
	if s.skuOverride != "" {
		sku = s.skuOverride
	}
	s.mu.Unlock()

	resp, err := s.payments.GetProduct(ctx, sku, sess.UserID, s.testCoupon)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(orDefault(resp.Error, "Error al obtener producto"))
	}

	if !resp.Payment {
		return &StartResult{
			Route:   nav.RouteHome,
			Product: resp.Product,
			Notice:  "El producto tiene 100% de descuento. No se requiere pago.",
		}, nil
	}

	if _, err := s.Begin(ctx, sess, resp.Product); err != nil {
		return nil, err
	}

	return &StartResult{Route: nav.RouteCheckout, Product: resp.Product}, nil
}

// Begin enters the checkout step. The product comes from the prior screen; a
// missing product or session redirects home. The form auto-fills with
// generated data, preferring the customer's stored profile and always taking
// the session's email.
func (s *CheckoutService) Begin(ctx context.Context, sess *identity.Session, product *model.Product) (*CheckoutForm, error) {
	if sess == nil || product == nil {
		return nil, ErrRedirectHome
	}

	customer, shipping := s.gen.CheckoutData()

	if profile, err := s.profiles.Get(ctx, sess.UserID); err == nil && profile != nil && profile.FullName != "" {
		customer.FirstName = profile.FirstName
		customer.LastName = profile.LastName
		customer.FullName = profile.FullName
		customer.PhoneNumber = profile.PhoneNumber
		customer.LegalID = profile.LegalID
		customer.LegalIDType = profile.LegalIDType
		if profile.Email != "" {
			customer.Email = profile.Email
		}
	} else if err != nil {
		apperr.LogError(err, "loadProfile")
	}

	if sess.Email != "" {
		customer.Email = sess.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A new checkout attempt implicitly replaces the previous payment data.
	s.store.Clear()

	// The product was priced with the configured default coupon; seed the
	// form with it so submission carries the same discount.
	s.form = &CheckoutForm{
		Sku:             product.Sku,
		CouponCode:      s.testCoupon,
		CouponApplied:   s.testCoupon != "",
		Customer:        customer,
		Shipping:        shipping,
		Product:         product,
		OriginalProduct: product,
	}

	form := *s.form
	return &form, nil
}

// Form returns a copy of the current checkout form.
func (s *CheckoutService) Form() (*CheckoutForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, ErrRedirectHome
	}
	form := *s.form
	return &form, nil
}

// Regenerate replaces the form's customer and shipping data with fresh
// random values.
func (s *CheckoutService) Regenerate(sess *identity.Session) (*CheckoutForm, error) {
	customer, shipping := s.gen.CheckoutData()
	if sess != nil && sess.Email != "" {
		customer.Email = sess.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, ErrRedirectHome
	}

	s.form.Customer = customer
	s.form.Shipping = shipping

	form := *s.form
	return &form, nil
}

// SetFormData overwrites the form with user edits.
func (s *CheckoutService) SetFormData(customer model.CustomerData, shipping model.ShippingAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return ErrRedirectHome
	}
	s.form.Customer = customer
	s.form.Shipping = shipping
	return nil
}

// ApplyCoupon re-fetches the product with the coupon attached. On success the
// discounted product replaces the displayed one and the code is retained for
// submission. Re-applying the same code yields the same result.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, sess *identity.Session, code string) (*model.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("Ingresa un código de cupón")
	}

	s.mu.Lock()
	if s.form == nil {
		s.mu.Unlock()
		return nil, ErrRedirectHome
	}
	sku := s.form.Sku
	s.mu.Unlock()

	resp, err := s.payments.GetProduct(ctx, sku, sess.UserID, code)
	if err != nil {
		// Rejections can arrive as a 400 instead of a success:false envelope;
		// both go through the same fixed messages.
		if appErr := apperr.Normalize(err); appErr.Code == apperr.KindValidation {
			return nil, errors.New(couponMessage(appErr.Msg))
		}
		return nil, err
	}
	if !resp.Success || resp.Product == nil {
		return nil, errors.New(couponMessage(resp.Error))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, ErrRedirectHome
	}
	s.form.Product = resp.Product
	s.form.CouponCode = code
	s.form.CouponApplied = true

	return resp.Product, nil
}

// RemoveCoupon restores the original product and clears the stored code.
func (s *CheckoutService) RemoveCoupon() (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, ErrRedirectHome
	}

	s.form.Product = s.form.OriginalProduct
	s.form.CouponCode = ""
	s.form.CouponApplied = false

	return s.form.Product, nil
}

// Submit posts the checkout request. With a widget configuration in the
// response, the payment data is stored and the flow moves to the payment
// step. A successful response without one means the backend decided no
// payment is due, so a terminal approved transaction is synthesized and the
// flow skips straight to the result step.
func (s *CheckoutService) Submit(ctx context.Context, sess *identity.Session) (nav.Route, error) {
	if sess == nil {
		return nav.RouteHome, errors.New("Usuario no autenticado")
	}

	s.mu.Lock()
	if s.form == nil {
		s.mu.Unlock()
		return nav.RouteHome, ErrRedirectHome
	}
	form := *s.form
	s.mu.Unlock()

	req := buildCheckoutRequest(&form)

	resp, err := s.payments.Checkout(ctx, sess.UserID, req)
	if err != nil {
		return nav.RouteCheckout, err
	}
	if !resp.Success {
		return nav.RouteCheckout, errors.New(orDefault(resp.Error, "Error al procesar checkout"))
	}

	s.saveProfile(ctx, sess.UserID, &req.CustomerData)

	if resp.Data != nil {
		s.store.Update(session.Patch{
			WidgetConfig: resp.Data,
			ProductData:  form.Product,
			CheckoutData: req,
		})
		if resp.Data.Reference != "" {
			if err := s.profiles.SaveLastReference(ctx, sess.UserID, resp.Data.Reference); err != nil {
				apperr.LogError(err, "saveLastReference")
			}
		}
		return nav.RoutePayment, nil
	}

	// No payment due (e.g. a 100% discount): synthesize the terminal record
	// and bypass the widget entirely.
	tx := &model.Transaction{
		ID:            "test-" + uuid.NewString(),
		Reference:     req.CustomerData.FullName,
		Status:        model.StatusApproved,
		AmountInCents: form.Product.TotalCents,
		Currency:      "COP",
		CustomerEmail: req.CustomerData.Email,
	}
	s.store.Update(session.Patch{
		TransactionID: session.StringPtr(tx.ID),
		Reference:     session.StringPtr(tx.Reference),
		Transaction:   tx,
		ProductData:   form.Product,
		CheckoutData:  req,
	})
	if err := s.profiles.SaveLastReference(ctx, sess.UserID, tx.Reference); err != nil {
		apperr.LogError(err, "saveLastReference")
	}

	return nav.RoutePaymentResult, nil
}

// CancelInProgress cancels the user's in-flight payment, the recovery action
// offered when the backend answers 409.
func (s *CheckoutService) CancelInProgress(ctx context.Context, sess *identity.Session) (*model.CancelResponse, error) {
	if sess == nil {
		return nil, errors.New("Usuario no autenticado")
	}
	return s.payments.CancelTransaction(ctx, sess.UserID)
}

func (s *CheckoutService) saveProfile(ctx context.Context, userID string, customer *model.CustomerData) {
	err := s.profiles.Save(ctx, &model.CustomerProfile{
		UserID:      userID,
		Email:       customer.Email,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		FullName:    customer.FullName,
		PhoneNumber: customer.PhoneNumber,
		LegalID:     customer.LegalID,
		LegalIDType: customer.LegalIDType,
	})
	if err != nil {
		apperr.LogError(err, "saveProfile")
	}
}

// buildCheckoutRequest merges the form into the outbound payload: fullName is
// re-derived from the split name fields and the shipping address inherits the
// customer phone when it has none of its own.
func buildCheckoutRequest(form *CheckoutForm) *model.CheckoutRequest {
	customer := form.Customer
	if name := strings.TrimSpace(strings.TrimSpace(customer.FirstName) + " " + strings.TrimSpace(customer.LastName)); name != "" {
		customer.FullName = name
	}
	if customer.PhoneNumberPrefix == "" {
		customer.PhoneNumberPrefix = "+57"
	}

	shipping := form.Shipping
	if shipping.PhoneNumber == "" {
		shipping.PhoneNumber = customer.PhoneNumber
	}

	req := &model.CheckoutRequest{
		Sku:             form.Sku,
		CustomerData:    customer,
		ShippingAddress: shipping,
	}
	if form.CouponApplied {
		req.CouponCode = form.CouponCode
	}
	return req
}

// couponMessage maps the backend's coupon rejection text to the fixed user
// messages.
func couponMessage(serverMsg string) string {
	msg := strings.ToLower(serverMsg)
	switch {
	case strings.Contains(msg, "redimido") || strings.Contains(msg, "redeemed"):
		return "Este cupón ya ha sido redimido"
	case strings.Contains(msg, "expirado") || strings.Contains(msg, "expired"):
		return "Este cupón ha expirado"
	case strings.Contains(msg, "inválido") || strings.Contains(msg, "invalid"):
		return "Cupón inválido"
	default:
		return "No se pudo aplicar el cupón"
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
