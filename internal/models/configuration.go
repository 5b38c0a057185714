package models

type Configuration struct {
	App      AppConfiguration      `mapstructure:"app"      validate:"required"`
	Database DatabaseConfiguration `mapstructure:"database" validate:"required"`
	Cache    CacheConfiguration    `mapstructure:"cache"    validate:"required"`
	Events   EventsConfiguration   `mapstructure:"events"   validate:"required"`
	Notifier NotifierConfiguration `mapstructure:"notifier" validate:"required"`
	Audit    AuditConfiguration    `mapstructure:"audit"    validate:"required"`
	Features FeatureConfiguration  `mapstructure:"features"`
}

type AppConfiguration struct {
	Profile        string   `mapstructure:"profile"         validate:"oneof=default api worker"`
	PlatformName   string   `mapstructure:"platform_name"   validate:"required"`
	Port           int      `mapstructure:"port"            validate:"gte=80,lte=65535"`
	LMSRootURL     string   `mapstructure:"lms_root_url"    validate:"required,http_url"`
	SupportURL     string   `mapstructure:"support_url"     validate:"required"`
	JWTSecret      string   `mapstructure:"jwt_secret"      validate:"required"`
	CookieDomain   string   `mapstructure:"cookie_domain"`
	SecureCookies  bool     `mapstructure:"secure_cookies"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	LogLevel       string   `mapstructure:"log_level"       validate:"oneof=debug info warn error fatal panic"`

	// SafeRedirectHosts is the allow-list consulted when validating the
	// post-logout redirect target. The LMS root host is always allowed.
	SafeRedirectHosts []string `mapstructure:"safe_redirect_hosts"`

	// RelyingPartyLogoutURIs are static logout endpoints fanned out at logout
	// in addition to those registered in the relying_parties table.
	RelyingPartyLogoutURIs []string `mapstructure:"relying_party_logout_uris"`

	TracingEndpoint string `mapstructure:"tracing_endpoint"`
}

// FeatureConfiguration gates behavior that rollouts toggle independently of
// deployments.
type FeatureConfiguration struct {
	// SquelchPIIInLogs omits emails and usernames from audit log text while
	// preserving the failure category.
	SquelchPIIInLogs bool `mapstructure:"squelch_pii_in_logs"`

	// LoginErrorStatusCode400 switches login failures from the legacy
	// 200-with-flag contract to a 400 status code.
	LoginErrorStatusCode400 bool `mapstructure:"login_error_status_code_400"`

	// Lockout settings: consecutive-failure counting is disabled entirely
	// when LockoutEnabled is false.
	LockoutEnabled     bool `mapstructure:"lockout_enabled"`
	LockoutMaxFailures int  `mapstructure:"lockout_max_failures"     validate:"gte=1"`
	LockoutMinutes     int  `mapstructure:"lockout_minutes"          validate:"gte=1"`

	// RateLimitPerMinute caps login attempts per client IP. Zero disables.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// ThirdPartyAuthOnlyDomain forces accounts under this email domain to
	// sign in through the named SSO provider unless allow-listed.
	ThirdPartyAuthOnlyDomain   string `mapstructure:"third_party_auth_only_domain"`
	ThirdPartyAuthOnlyProvider string `mapstructure:"third_party_auth_only_provider"`

	// PasswordPolicySeverity: "off", "warn" or "block".
	PasswordPolicySeverity  string `mapstructure:"password_policy_severity" validate:"oneof=off warn block"`
	PasswordPolicyMinLength int    `mapstructure:"password_policy_min_length"`

	PreventConcurrentLogins bool `mapstructure:"prevent_concurrent_logins"`

	// DisableLastLoginUpdate skips the last_login write on login to reduce
	// write load on large installations.
	DisableLastLoginUpdate bool `mapstructure:"disable_last_login_update"`

	AccessibilityPageEnabled bool `mapstructure:"accessibility_page_enabled"`
}

type DatabaseConfiguration struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int32  `mapstructure:"port"     validate:"gte=80,lte=65535"`
	User     string `mapstructure:"user"     validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name"     validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

type CacheConfiguration struct {
	Type  string                   `mapstructure:"type"  validate:"required,oneof=redis valkey"`
	Redis *RedisCacheConfiguration `mapstructure:"redis" validate:"required"`
}

type RedisCacheConfiguration struct {
	Hosts         []string `mapstructure:"hosts"`
	Password      string   `mapstructure:"password"`
	TLSEnabled    bool     `mapstructure:"tls_enabled"`
	TLSServerName string   `mapstructure:"tls_server_name"`
}

type QueueConfig struct {
	Name string `mapstructure:"name" validate:"required"`
}

type EventsConfiguration struct {
	Type      string                 `mapstructure:"type"      validate:"required,oneof=jetstream memory"`
	Queues    map[string]QueueConfig `mapstructure:"queues"    validate:"required"`
	Jetstream *JetStreamEventsConfig `mapstructure:"jetstream" validate:"required_if=Type jetstream"`
}

type JetStreamEventsConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port string `mapstructure:"port" validate:"required"`
}

type MailerConfiguration struct {
	Host          string `mapstructure:"host"            validate:"required"`
	Port          int    `mapstructure:"port"            validate:"required"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Sender        string `mapstructure:"sender"          validate:"required"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	SkipVerifyTLS bool   `mapstructure:"skip_verify_tls"`
}

type NotifierConfiguration struct {
	Type       string                           `mapstructure:"type"       validate:"required,oneof=smtp filesystem"`
	SMTP       *MailerConfiguration             `mapstructure:"smtp"       validate:"required_if=Type smtp"`
	Filesystem *FilesystemNotifierConfiguration `mapstructure:"filesystem" validate:"required_if=Type filesystem"`
}

type FilesystemNotifierConfiguration struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

type AuditConfiguration struct {
	Type       string                        `mapstructure:"type"       validate:"required,oneof=filesystem"`
	Filesystem *FilesystemAuditConfiguration `mapstructure:"filesystem" validate:"required_if=Type filesystem"`
}

type FilesystemAuditConfiguration struct {
	Directory string `mapstructure:"directory" validate:"required"`
}

// AuthConfig groups the configuration the auth service needs, so handlers do
// not carry the whole Configuration tree.
type AuthConfig struct {
	JWTSecret              string
	PlatformName           string
	LMSRootURL             string
	SupportURL             string
	CookieDomain           string
	SecureCookies          bool
	SafeRedirectHosts      []string
	RelyingPartyLogoutURIs []string
	TrustedProxies         []string
	Features               FeatureConfiguration
}

// GetAuthConfig extracts authentication configuration from the full tree.
func (c *Configuration) GetAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:              c.App.JWTSecret,
		PlatformName:           c.App.PlatformName,
		LMSRootURL:             c.App.LMSRootURL,
		SupportURL:             c.App.SupportURL,
		CookieDomain:           c.App.CookieDomain,
		SecureCookies:          c.App.SecureCookies,
		SafeRedirectHosts:      c.App.SafeRedirectHosts,
		RelyingPartyLogoutURIs: c.App.RelyingPartyLogoutURIs,
		TrustedProxies:         c.App.TrustedProxies,
		Features:               c.Features,
	}
}
