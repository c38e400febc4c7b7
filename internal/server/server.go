package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"wompi-harness/internal/handler"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/middleware"
)

type Server struct {
	echo            *echo.Echo
	authHandler     *handler.AuthHandler
	homeHandler     *handler.HomeHandler
	checkoutHandler *handler.CheckoutHandler
	paymentHandler  *handler.PaymentHandler
	resultHandler   *handler.ResultHandler
	sessions        *identity.Manager
}

func NewServer(
	authHandler *handler.AuthHandler,
	homeHandler *handler.HomeHandler,
	checkoutHandler *handler.CheckoutHandler,
	paymentHandler *handler.PaymentHandler,
	resultHandler *handler.ResultHandler,
	sessions *identity.Manager,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		authHandler:     authHandler,
		homeHandler:     homeHandler,
		checkoutHandler: checkoutHandler,
		paymentHandler:  paymentHandler,
		resultHandler:   resultHandler,
		sessions:        sessions,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- public --------
	e.GET("/", s.homeHandler.View)
	e.GET("/register", s.authHandler.RegisterForm)
	e.POST("/register", s.authHandler.Register)
	e.POST("/login", s.authHandler.Login)
	e.POST("/logout", s.authHandler.Logout)

	// -------- auth-required flow --------
	g := e.Group("", middleware.RequireSession(s.sessions))
	g.POST("/start", s.homeHandler.StartTest)

	g.GET("/checkout", s.checkoutHandler.View)
	g.POST("/checkout", s.checkoutHandler.Submit)
	g.POST("/checkout/generate", s.checkoutHandler.Regenerate)
	g.POST("/checkout/coupon", s.checkoutHandler.ApplyCoupon)
	g.DELETE("/checkout/coupon", s.checkoutHandler.RemoveCoupon)

	g.GET("/payment", s.paymentHandler.View)
	g.POST("/payment/complete", s.paymentHandler.Complete)
	g.POST("/payment/cancel", s.checkoutHandler.Cancel)

	g.GET("/payment-result", s.resultHandler.View)
	g.POST("/payment-result/check", s.resultHandler.Check)
	g.POST("/payment-result/webhook", s.resultHandler.SimulateWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
