package configuration

const AppName = "lms"

// Session cookie names. The logged-in cookie is readable by the external
// marketing site, so it carries no secrets.
const (
	SessionCookieName  = "lms_sessionid"
	LoggedInCookieName = "lms_logged_in"
)

// Session expiry: 4 weeks, matching the extended expiry set on login.
const SessionExpirySeconds = 604800 * 4

const (
	CacheMaxAppIdentityLifetime = 60
	CacheAppIdentityKey         = "app:identity"
	CacheAppWorkerLockKey       = "app:worker:lock:%s" //nolint:gosec // not a credential
	CacheAppWorkerLockTTL       = 60
	CacheAppWorkerLockRefresh   = 55
	CacheLoginRateLimitKey      = "login:ratelimit:%s"
	CachePipelineKey            = "auth:pipeline:%s"
)

// PipelineTTL bounds how long a third-party handshake may stay in progress
// across redirects (in seconds).
const PipelineTTL = 600

const (
	EventsNotifications = "notifications"
	EventsAnalytics     = "analytics"
)

// Backend provider identifiers used across cache, events and notifier
// configuration.
const (
	ProviderMemory     = "memory"
	ProviderJetstream  = "jetstream"
	ProviderSMTP       = "smtp"
	ProviderFilesystem = "filesystem"
)

// Analytics event names.
const EventUserAuthenticated = "lms.bi.user.account.authenticated"

// Audit actions recorded by the authentication flow.
const (
	AuditLoginSucceeded        = "login.succeeded"
	AuditLoginUnknownUser      = "login.unknown_user"
	AuditLoginInvalidPassword  = "login.invalid_password"
	AuditLoginAccountLocked    = "login.account_locked"
	AuditLoginInactiveAccount  = "login.inactive_account"
	AuditLoginUnlinkedProvider = "login.unlinked_provider"
	AuditLoginDomainSSO        = "login.domain_requires_sso"
	AuditLoginRateLimited      = "login.rate_limited"
	AuditLoginPasswordPolicy   = "login.password_policy"
	AuditLogout                = "logout"
)

// ConfigFileSearchPaths lists where Read looks for a YAML config when
// CONFIG_FILE_PATH is not set.
var ConfigFileSearchPaths = []string{
	"config.yaml",
	"/etc/lms/config.yaml",
}

// ArrayConfigFields are config keys whose env values are parsed as arrays.
var ArrayConfigFields = []string{
	"app.allowed_origins",
	"app.trusted_proxies",
	"app.safe_redirect_hosts",
	"app.relying_party_logout_uris",
	"cache.redis.hosts",
}
