package config

import "time"

type Config struct {
	Environment Environment
	HTTP        HTTPServer

	// Backend API the harness exercises, and the origin the widget redirects
	// back to after payment.
	APIBaseURL    string `env:"API_BASE_URL" envDefault:"http://localhost:3100"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"harness.db"`

	Wompi    Wompi    `envPrefix:"WOMPI_"`
	Identity Identity `envPrefix:"IDENTITY_"`
	Test     Test     `envPrefix:"TEST_"`
}

type Wompi struct {
	PublicKey string `env:"PUBLIC_KEY"`
	WidgetURL string `env:"WIDGET_URL" envDefault:"https://checkout.wompi.co/widget.js"`

	// Delay before returning home after the user closes the widget without
	// paying. Product policy, kept configurable.
	CancelRedirectDelay time.Duration `env:"CANCEL_REDIRECT_DELAY" envDefault:"3s"`
}

type Identity struct {
	BaseURL   string `env:"BASE_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`
	APIKey    string `env:"API_KEY"`
	ProjectID string `env:"PROJECT_ID"`
}

type Test struct {
	ProductSKU string `env:"PRODUCT_SKU" envDefault:"TU-CARRERA-001"`
	CouponCode string `env:"COUPON_CODE"`

	// Fixed password used for every generated account.
	DefaultPassword string `env:"DEFAULT_PWD" envDefault:"Test1234*"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Warnings reports configuration that is required for a full run but absent.
// Missing values are logged at startup, never a hard failure.
func (c *Config) Warnings() []string {
	var missing []string
	if c.Wompi.PublicKey == "" {
		missing = append(missing, "WOMPI_PUBLIC_KEY")
	}
	if c.Identity.APIKey == "" {
		missing = append(missing, "IDENTITY_API_KEY")
	}
	if c.Test.ProductSKU == "" {
		missing = append(missing, "TEST_PRODUCT_SKU")
	}
	return missing
}
