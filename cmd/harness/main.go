package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"wompi-harness/internal/client"
	"wompi-harness/internal/config"
	"wompi-harness/internal/datagen"
	"wompi-harness/internal/flow"
	"wompi-harness/internal/handler"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/repository"
	"wompi-harness/internal/server"
	"wompi-harness/internal/service"
	"wompi-harness/internal/session"
	"wompi-harness/internal/widget"
)

var version = "0.1.0"

type dependencies struct {
	cfg      *config.Config
	gen      *datagen.Generator
	sessions *identity.Manager
	store    *session.Store
	checkout *service.CheckoutService
	verify   *service.VerifyService
}

func buildDependencies(cfg *config.Config) *dependencies {
	gen := datagen.New(rand.NewSource(time.Now().UnixNano()), cfg.Test.DefaultPassword)

	idClient := client.NewIdentityClient(&cfg.Identity)
	sessions := identity.NewManager(idClient)
	sessions.Start()

	backend := client.NewBackendClient(cfg.APIBaseURL, sessions)
	payments := service.NewPaymentService(backend)

	db := client.InitSqliteClient(cfg.SQLitePath)
	profiles := repository.NewProfileRepository(db)

	store := session.NewStore()
	checkout := service.NewCheckoutService(
		payments, store, profiles, gen,
		cfg.Test.ProductSKU, cfg.Test.CouponCode,
	)
	verify := service.NewVerifyService(payments, store)

	return &dependencies{
		cfg:      cfg,
		gen:      gen,
		sessions: sessions,
		store:    store,
		checkout: checkout,
		verify:   verify,
	}
}

func widgetOptions(cfg *config.Config) widget.Options {
	return widget.Options{
		ScriptURL:           cfg.Wompi.WidgetURL,
		Origin:              cfg.PublicBaseURL,
		CancelRedirectDelay: cfg.Wompi.CancelRedirectDelay,
	}
}

func serveCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the checkout test-harness server",
		Action: func(c *cli.Context) error {
			deps := buildDependencies(cfg)
			opts := widgetOptions(cfg)

			authHandler := handler.NewAuthHandler(deps.sessions, deps.gen)
			homeHandler := handler.NewHomeHandler(deps.checkout, deps.sessions)
			checkoutHandler := handler.NewCheckoutHandler(deps.checkout, deps.sessions)
			paymentHandler := handler.NewPaymentHandler(deps.store, opts.ScriptURL, opts.Origin, opts.CancelRedirectDelay)
			resultHandler := handler.NewResultHandler(deps.verify, deps.store, deps.sessions)

			srv := server.NewServer(authHandler, homeHandler, checkoutHandler, paymentHandler, resultHandler, deps.sessions)

			serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
			log.Println("Starting harness server on", serverAddr)
			go func() {
				if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
					log.Fatal("HTTP server error:", err)
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
			<-sigChan

			log.Println("Signal received, shutting down...")
			return srv.Shutdown()
		},
	}
}

func flowCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "flow",
		Usage: "Run headless checkout flow scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scenarios",
				Aliases: []string{"f"},
				Usage:   "YAML scenario file; omit for a single default run",
			},
		},
		Action: func(c *cli.Context) error {
			deps := buildDependencies(cfg)

			scenarios := []flow.Scenario{{
				Name:            "default",
				Coupon:          cfg.Test.CouponCode,
				SimulateWebhook: true,
			}}
			if path := c.String("scenarios"); path != "" {
				loaded, err := flow.LoadScenarios(path)
				if err != nil {
					return err
				}
				scenarios = loaded
			}

			runner := flow.NewRunner(
				deps.sessions, deps.checkout, deps.verify, deps.store,
				&widget.HTTPScriptLoader{}, deps.gen, widgetOptions(cfg),
			)

			var failed []string
			for _, sc := range scenarios {
				report, err := runner.Run(context.Background(), sc)
				if err != nil {
					log.Printf("flow %q: FAILED: %v", sc.Name, err)
					failed = append(failed, sc.Name)
					continue
				}

				switch {
				case report.CancelMessage != "":
					log.Printf("flow %q: cancelled at widget (%s)", sc.Name, report.CancelMessage)
				case report.Outcome != nil:
					log.Printf("flow %q: %s (%s)", sc.Name, report.Outcome.Status, report.Outcome.Message)
				default:
					log.Printf("flow %q: %s", sc.Name, report.Notice)
				}
			}

			if len(failed) > 0 {
				return fmt.Errorf("scenarios failed: %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}
}

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	if missing := cfg.Warnings(); len(missing) > 0 {
		log.Printf("Warning: missing configuration: %s", strings.Join(missing, ", "))
	}

	app := &cli.App{
		Name:    "harness",
		Usage:   "Wompi checkout flow test harness",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(cfg),
			flowCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
