package middleware

// Config carries per-component feature flags and shared pipeline settings,
// loaded from the environment via core/config. Disabling a component drops
// it from the pipeline entirely; there is no runtime toggling.
type Config struct {
	Environment string `env:"SHIELD_ENV" envDefault:"development"`

	RequestIDEnabled bool `env:"SHIELD_REQUEST_ID_ENABLED" envDefault:"true"`
	ClientIPEnabled  bool `env:"SHIELD_CLIENT_IP_ENABLED" envDefault:"true"`
	LoggingEnabled   bool `env:"SHIELD_LOGGING_ENABLED" envDefault:"true"`

	RateLimitEnabled        bool     `env:"SHIELD_RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitExemptPrefixes []string `env:"SHIELD_RATE_LIMIT_EXEMPT_PREFIXES" envSeparator:","`

	CSRFEnabled        bool     `env:"SHIELD_CSRF_ENABLED" envDefault:"true"`
	CSRFExemptPrefixes []string `env:"SHIELD_CSRF_EXEMPT_PREFIXES" envSeparator:","`

	SecurityHeadersEnabled bool `env:"SHIELD_SECURITY_HEADERS_ENABLED" envDefault:"true"`
}

// IsProduction reports whether the pipeline runs with production policies
// (HSTS, generic client error messages).
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
