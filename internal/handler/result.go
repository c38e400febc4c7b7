package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"wompi-harness/internal/identity"
	"wompi-harness/internal/middleware"
	"wompi-harness/internal/service"
	"wompi-harness/internal/session"
)

// ResultView is the result step's rendering: the known transaction data plus
// the latest verification outcome.
type ResultView struct {
	TransactionID string `json:"transactionId,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Status        string `json:"status,omitempty"`
	AmountInCents int64  `json:"amountInCents,omitempty"`
	Message       string `json:"message,omitempty"`
	Level         string `json:"level,omitempty"`
}

type ResultHandler struct {
	verify   *service.VerifyService
	store    *session.Store
	sessions *identity.Manager
}

func NewResultHandler(verify *service.VerifyService, store *session.Store, sessions *identity.Manager) *ResultHandler {
	return &ResultHandler{verify: verify, store: store, sessions: sessions}
}

// View verifies the transaction once per page load. The optional id query
// parameter covers the reload/direct-link case.
func (h *ResultHandler) View(c echo.Context) error {
	return h.check(c)
}

// Check re-triggers verification manually.
func (h *ResultHandler) Check(c echo.Context) error {
	return h.check(c)
}

func (h *ResultHandler) check(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFromContext(c, h.sessions)
	urlID := c.QueryParam("id")

	outcome, err := h.verify.Verify(ctx, sess, urlID)
	if err != nil {
		if errors.Is(err, service.ErrRedirectHome) {
			return redirectHome(c, err)
		}
		return errorJSON(c, err)
	}

	view := ResultView{
		TransactionID: outcome.Result.ID,
		Reference:     outcome.Result.Reference,
		Status:        outcome.Status,
		Message:       outcome.Message,
		Level:         outcome.Level,
	}
	if tx := h.store.Snapshot().Transaction; tx != nil {
		view.AmountInCents = tx.AmountInCents
	}

	return c.JSON(http.StatusOK, view)
}

// SimulateWebhook posts the synthetic gateway notification; test-only and
// never triggered automatically.
func (h *ResultHandler) SimulateWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	urlID := c.QueryParam("id")

	resp, err := h.verify.SimulateWebhook(ctx, urlID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Webhook simulado exitosamente",
		"response": resp,
	})
}
