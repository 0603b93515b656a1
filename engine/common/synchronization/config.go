package synchronization

import (
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config is the configuration of the Synchronizer.
type Config struct {
	// InboundQueueCapacity is the number of blocks which can wait in the
	// inbound queue before further blocks are dropped.
	InboundQueueCapacity uint
	// DeliveredCacheSize is the number of recently delivered block IDs kept
	// to avoid delivering a block twice when it is received again.
	DeliveredCacheSize uint
	// MaxPendingAncestors bounds the number of distinct missing ancestors
	// which are synchronized at the same time.
	MaxPendingAncestors uint
	// RetryScanInterval is the interval at which pending ancestors are
	// checked for due re-requests.
	RetryScanInterval time.Duration
	// RetryBaseInterval is the delay before the first re-request. Each
	// further re-request doubles the delay.
	RetryBaseInterval time.Duration
	// RetryMaxInterval caps the delay between two requests.
	RetryMaxInterval time.Duration
	// RetryJitterPercent randomizes each delay by up to the given percentage.
	RetryJitterPercent uint64
	// MaxRequestAttempts is the number of requests sent for a missing
	// ancestor before it is abandoned. Zero means never abandon.
	MaxRequestAttempts uint64
}

func DefaultConfig() *Config {
	return &Config{
		InboundQueueCapacity: 1000,
		DeliveredCacheSize:   1000,
		MaxPendingAncestors:  500,
		RetryScanInterval:    time.Second,
		RetryBaseInterval:    2 * time.Second,
		RetryMaxInterval:     30 * time.Second,
		RetryJitterPercent:   10,
		MaxRequestAttempts:   10,
	}
}

type OptionFunc func(*Config)

// WithInboundQueueCapacity sets the capacity of the inbound block queue.
func WithInboundQueueCapacity(capacity uint) OptionFunc {
	return func(cfg *Config) {
		cfg.InboundQueueCapacity = capacity
	}
}

// WithDeliveredCacheSize sets the number of recently delivered blocks which
// are remembered to suppress duplicate deliveries.
func WithDeliveredCacheSize(size uint) OptionFunc {
	return func(cfg *Config) {
		cfg.DeliveredCacheSize = size
	}
}

// WithMaxPendingAncestors sets the maximum number of missing ancestors
// synchronized at the same time.
func WithMaxPendingAncestors(limit uint) OptionFunc {
	return func(cfg *Config) {
		cfg.MaxPendingAncestors = limit
	}
}

// WithRetryScanInterval sets a custom interval at which we scan for pending
// ancestors which should be requested again.
func WithRetryScanInterval(interval time.Duration) OptionFunc {
	return func(cfg *Config) {
		cfg.RetryScanInterval = interval
	}
}

// WithRetryBackoff sets the base and max delay between requests for the
// same missing ancestor.
func WithRetryBackoff(base time.Duration, max time.Duration) OptionFunc {
	return func(cfg *Config) {
		cfg.RetryBaseInterval = base
		cfg.RetryMaxInterval = max
	}
}

// WithRetryJitterPercent sets the jitter applied to re-request delays.
func WithRetryJitterPercent(percent uint64) OptionFunc {
	return func(cfg *Config) {
		cfg.RetryJitterPercent = percent
	}
}

// WithMaxRequestAttempts sets the number of requests after which a missing
// ancestor is abandoned. Zero disables abandoning.
func WithMaxRequestAttempts(attempts uint64) OptionFunc {
	return func(cfg *Config) {
		cfg.MaxRequestAttempts = attempts
	}
}

func (cfg *Config) validate() error {
	if cfg.InboundQueueCapacity == 0 {
		return fmt.Errorf("inbound queue capacity must be positive")
	}
	if cfg.DeliveredCacheSize == 0 {
		return fmt.Errorf("delivered cache size must be positive")
	}
	if cfg.MaxPendingAncestors == 0 {
		return fmt.Errorf("max pending ancestors must be positive")
	}
	if cfg.RetryScanInterval <= 0 {
		return fmt.Errorf("retry scan interval must be positive, got %v", cfg.RetryScanInterval)
	}
	if cfg.RetryBaseInterval <= 0 {
		return fmt.Errorf("retry base interval must be positive, got %v", cfg.RetryBaseInterval)
	}
	if cfg.RetryMaxInterval < cfg.RetryBaseInterval {
		return fmt.Errorf("retry max interval (%v) must not be below base interval (%v)", cfg.RetryMaxInterval, cfg.RetryBaseInterval)
	}
	if cfg.RetryJitterPercent > 100 {
		return fmt.Errorf("retry jitter must be at most 100%%, got %d%%", cfg.RetryJitterPercent)
	}
	return nil
}

// newBackoff creates the backoff schedule for re-requesting a single missing
// ancestor. Backoffs are stateful, so every pending ancestor needs its own.
// The config must be valid.
func (cfg *Config) newBackoff() retry.Backoff {
	backoff := retry.NewExponential(cfg.RetryBaseInterval)
	backoff = retry.WithCappedDuration(cfg.RetryMaxInterval, backoff)
	if cfg.RetryJitterPercent > 0 {
		backoff = retry.WithJitterPercent(cfg.RetryJitterPercent, backoff)
	}
	if cfg.MaxRequestAttempts > 0 {
		// the first request is sent before the backoff is consulted
		backoff = retry.WithMaxRetries(cfg.MaxRequestAttempts-1, backoff)
	}
	return backoff
}
