package config

import "time"

type ServiceConfig struct {
	Name        string        `yaml:"name"`
	Environment string        `yaml:"environment"`
	Version     string        `yaml:"version"`
	ClientURL   string        `yaml:"client_url"`
	Currency    string        `yaml:"currency"`
	Gateway     GatewayConfig `yaml:"gateway"`
	Cache       CacheConfig   `yaml:"cache"`
	Events      EventsConfig  `yaml:"events"`
}

type GatewayConfig struct {
	// Provider selects the gateway implementation: greenpay or stripe.
	Provider string         `yaml:"provider"`
	Timeout  time.Duration  `yaml:"timeout"`
	GreenPay GreenPayConfig `yaml:"greenpay"`
	Stripe   StripeConfig   `yaml:"stripe"`
}

type GreenPayConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// CacheConfig configures the optional Redis payment cache. An empty Addr
// disables caching.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// EventsConfig configures the optional Kafka event publisher. Empty Brokers
// disables publishing.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SchedulerConfig holds the recurring job intervals and the housekeeping
// retention window.
type SchedulerConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	FailedRetention   time.Duration `yaml:"failed_retention"`
}

func (c *Config) applyDefaults() {
	if c.Service.Currency == "" {
		c.Service.Currency = "USD"
	}
	if c.Service.Gateway.Provider == "" {
		c.Service.Gateway.Provider = "greenpay"
	}
	if c.Service.Gateway.Timeout == 0 {
		c.Service.Gateway.Timeout = 30 * time.Second
	}
	if c.Service.Cache.TTL == 0 {
		c.Service.Cache.TTL = 5 * time.Minute
	}
	if c.Service.Events.Topic == "" {
		c.Service.Events.Topic = "payment-events"
	}
	if c.Scheduler.ReconcileInterval == 0 {
		c.Scheduler.ReconcileInterval = 24 * time.Hour
	}
	if c.Scheduler.CleanupInterval == 0 {
		c.Scheduler.CleanupInterval = 7 * 24 * time.Hour
	}
	if c.Scheduler.FailedRetention == 0 {
		c.Scheduler.FailedRetention = 30 * 24 * time.Hour
	}
}
