package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"wompi-harness/internal/dto"
	"wompi-harness/internal/nav"
	"wompi-harness/internal/session"
	"wompi-harness/internal/widget"
)

// PaymentView is what the payment step needs to open the hosted widget in
// the browser.
type PaymentView struct {
	ScriptURL string                 `json:"scriptUrl"`
	Params    *widget.CheckoutParams `json:"params"`
}

type PaymentHandler struct {
	store       *session.Store
	scriptURL   string
	origin      string
	cancelDelay time.Duration
}

func NewPaymentHandler(store *session.Store, scriptURL, origin string, cancelDelay time.Duration) *PaymentHandler {
	return &PaymentHandler{
		store:       store,
		scriptURL:   scriptURL,
		origin:      origin,
		cancelDelay: cancelDelay,
	}
}

// View builds the widget parameters from the stored configuration. Without
// one, the client is sent home.
func (h *PaymentHandler) View(c echo.Context) error {
	cfg := h.store.Snapshot().WidgetConfig
	if cfg == nil {
		return c.JSON(http.StatusOK, dto.RedirectResponse{Redirect: string(nav.RouteHome)})
	}

	params, err := widget.BuildParams(cfg, h.origin)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, PaymentView{
		ScriptURL: h.scriptURL,
		Params:    params,
	})
}

// Complete receives the widget's completion callback. A transaction moves the
// flow to the result step; none means the user closed the widget, which shows
// the cancellation message and returns home after the configured delay.
func (h *PaymentHandler) Complete(c echo.Context) error {
	if h.store.Snapshot().WidgetConfig == nil {
		return c.JSON(http.StatusOK, dto.RedirectResponse{Redirect: string(nav.RouteHome)})
	}

	var req dto.CompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if req.Transaction == nil {
		return c.JSON(http.StatusOK, dto.RedirectResponse{
			Redirect:        string(nav.RouteHome),
			Message:         "Pago cancelado por el usuario",
			RedirectDelayMs: h.cancelDelay.Milliseconds(),
		})
	}

	h.store.Update(session.Patch{
		TransactionID: session.StringPtr(req.Transaction.ID),
		Reference:     session.StringPtr(req.Transaction.Reference),
		Transaction:   req.Transaction,
	})

	return c.JSON(http.StatusOK, dto.RedirectResponse{Redirect: string(nav.RoutePaymentResult)})
}
