// Package nav models the client-side routes of the harness flow.
package nav

type Route string

const (
	RouteHome          Route = "/"
	RouteLogin         Route = "/login"
	RouteRegister      Route = "/register"
	RouteCheckout      Route = "/checkout"
	RoutePayment       Route = "/payment"
	RoutePaymentResult Route = "/payment-result"
)

// Navigator receives step transitions. The flow runner walks them directly;
// the HTTP server turns them into redirect hints for the browser.
type Navigator interface {
	Navigate(route Route)
}

// Func adapts a function to the Navigator interface.
type Func func(Route)

func (f Func) Navigate(route Route) { f(route) }
