package cacclient

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ClientOptions are the validated constructor arguments for a Client,
// mirroring the teacher's config-struct-plus-Validate() convention
// (internal/infrastructure/cache.CacheConfig.Validate).
type ClientOptions struct {
	Tenant          string        `validate:"required"`
	PollingInterval time.Duration `validate:"required,gt=0"`
	Hostname        string        `validate:"required,url"`

	// RefreshBurst bounds how many polling-loop refreshes may fire
	// back-to-back before the rate limiter in client.go starts delaying
	// them. Zero defaults to 1.
	RefreshBurst int

	// Logger receives construction and refresh diagnostics. A nil Logger
	// defaults to slog.Default().
	Logger *slog.Logger

	// HTTPClient overrides the transport used for fetches; nil uses a
	// client configured the way the teacher configures its webhook
	// transport (explicit timeouts, TLS 1.2 floor, connection pooling).
	HTTPClient httpDoer
}

// Validate checks the options and returns a wrapped error naming the
// violated constraints, or nil.
func (o ClientOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("cacclient: invalid options: %w", err)
	}
	if _, err := url.ParseRequestURI(o.Hostname); err != nil {
		return fmt.Errorf("cacclient: invalid hostname %q: %w", o.Hostname, err)
	}
	return nil
}
