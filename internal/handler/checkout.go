package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"wompi-harness/internal/dto"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/middleware"
	"wompi-harness/internal/nav"
	"wompi-harness/internal/service"
)

type HomeHandler struct {
	checkout *service.CheckoutService
	sessions *identity.Manager
}

func NewHomeHandler(checkout *service.CheckoutService, sessions *identity.Manager) *HomeHandler {
	return &HomeHandler{checkout: checkout, sessions: sessions}
}

func (h *HomeHandler) View(c echo.Context) error {
	sess := h.sessions.Current()
	if sess == nil {
		return c.JSON(http.StatusOK, dto.SessionResponse{})
	}
	return c.JSON(http.StatusOK, dto.SessionResponse{
		UserID: sess.UserID,
		Email:  sess.Email,
	})
}

// StartTest fetches the test product and sends the client to the checkout
// step, or reports the no-payment notice.
func (h *HomeHandler) StartTest(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFromContext(c, h.sessions)

	result, err := h.checkout.StartTest(ctx, sess)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, dto.StartResponse{
		Redirect: string(result.Route),
		Notice:   result.Notice,
		Product:  result.Product,
	})
}

type CheckoutHandler struct {
	checkout *service.CheckoutService
	sessions *identity.Manager
}

func NewCheckoutHandler(checkout *service.CheckoutService, sessions *identity.Manager) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, sessions: sessions}
}

func (h *CheckoutHandler) View(c echo.Context) error {
	form, err := h.checkout.Form()
	if err != nil {
		return redirectHome(c, err)
	}
	return c.JSON(http.StatusOK, formView(form))
}

func (h *CheckoutHandler) Regenerate(c echo.Context) error {
	sess := middleware.SessionFromContext(c, h.sessions)

	form, err := h.checkout.Regenerate(sess)
	if err != nil {
		return redirectHome(c, err)
	}
	return c.JSON(http.StatusOK, formView(form))
}

func (h *CheckoutHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFromContext(c, h.sessions)

	var req dto.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if _, err := h.checkout.ApplyCoupon(ctx, sess, req.Code); err != nil {
		if errors.Is(err, service.ErrRedirectHome) {
			return redirectHome(c, err)
		}
		return errorJSON(c, err)
	}

	form, err := h.checkout.Form()
	if err != nil {
		return redirectHome(c, err)
	}
	return c.JSON(http.StatusOK, formView(form))
}

func (h *CheckoutHandler) RemoveCoupon(c echo.Context) error {
	if _, err := h.checkout.RemoveCoupon(); err != nil {
		return redirectHome(c, err)
	}

	form, err := h.checkout.Form()
	if err != nil {
		return redirectHome(c, err)
	}
	return c.JSON(http.StatusOK, formView(form))
}

// Submit posts the checkout, optionally applying user edits first, and
// answers with the next step.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFromContext(c, h.sessions)

	var req dto.CheckoutSubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if req.CustomerData != nil && req.ShippingAddress != nil {
		if err := h.checkout.SetFormData(*req.CustomerData, *req.ShippingAddress); err != nil {
			return redirectHome(c, err)
		}
	}

	route, err := h.checkout.Submit(ctx, sess)
	if err != nil {
		if errors.Is(err, service.ErrRedirectHome) {
			return redirectHome(c, err)
		}
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, dto.RedirectResponse{Redirect: string(route)})
}

// Cancel aborts the in-flight payment, the 409 recovery action.
func (h *CheckoutHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFromContext(c, h.sessions)

	resp, err := h.checkout.CancelInProgress(ctx, sess)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func formView(form *service.CheckoutForm) dto.CheckoutFormView {
	return dto.CheckoutFormView{
		Sku:             form.Sku,
		CouponCode:      form.CouponCode,
		CouponApplied:   form.CouponApplied,
		CustomerData:    form.Customer,
		ShippingAddress: form.Shipping,
		Product:         form.Product,
	}
}

func redirectHome(c echo.Context, err error) error {
	if err != nil && !errors.Is(err, service.ErrRedirectHome) {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.RedirectResponse{Redirect: string(nav.RouteHome)})
}
