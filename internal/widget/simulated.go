package widget

import (
	"github.com/google/uuid"

	"wompi-harness/internal/model"
)

// SimulatedWidget stands in for the hosted checkout in headless runs. It
// calls the completion callback asynchronously, once, like the real widget.
type SimulatedWidget struct {
	// Cancel makes the widget behave as if the user closed it without paying.
	Cancel bool

	// Status of the simulated transaction; defaults to APPROVED.
	Status string
}

func (w *SimulatedWidget) Open(params *CheckoutParams, callback func(Result)) error {
	go func() {
		if w.Cancel {
			callback(Result{})
			return
		}

		status := w.Status
		if status == "" {
			status = model.StatusApproved
		}

		var email string
		if params.CustomerData != nil {
			email = params.CustomerData.Email
		}

		callback(Result{Transaction: &model.Transaction{
			ID:                uuid.NewString(),
			Reference:         params.Reference,
			Status:            status,
			AmountInCents:     params.AmountInCents,
			Currency:          params.Currency,
			PaymentMethodType: "CARD",
			CustomerEmail:     email,
			PaymentMethod: &model.PaymentMethod{
				Type: "CARD",
				Extra: map[string]any{
					"brand":     "VISA",
					"last_four": "4242",
				},
			},
		}})
	}()
	return nil
}
