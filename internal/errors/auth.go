package apierrors

// FailureKind categorizes login failures for auditing and status mapping.
// The user-facing message is carried separately so that UnknownUser and
// InvalidPassword can share identical text.
type FailureKind string

const (
	UnknownUser             FailureKind = "unknown_user"
	AccountLocked           FailureKind = "account_locked"
	InvalidPassword         FailureKind = "invalid_password"
	AccountNotActivated     FailureKind = "account_not_activated"
	DomainRequiresSSO       FailureKind = "domain_requires_sso"
	PasswordPolicyViolation FailureKind = "password_policy_violation"
	RateLimited             FailureKind = "rate_limited"
	ThirdPartyUnlinked      FailureKind = "third_party_unlinked"
)

// GenericLoginFailureMsg is deliberately shared by the unknown-user and
// wrong-password paths so the response does not reveal which part of the
// credential failed.
const GenericLoginFailureMsg = "Email or password is incorrect."

const (
	AccountLockedMsg = "This account has been temporarily locked due to excessive login failures. Try again later."
	RateLimitedMsg   = "Too many failed login attempts. Try again later."
)

// AuthFailedError is the recoverable login failure surfaced to the caller as
// a user-facing message.
type AuthFailedError struct {
	Kind        FailureKind
	Value       string
	RedirectURL string
}

func (e *AuthFailedError) Error() string {
	return e.Value
}

func NewAuthFailedError(kind FailureKind, value string) *AuthFailedError {
	return &AuthFailedError{Kind: kind, Value: value}
}

// GetResponse returns the legacy response body for this failure.
func (e *AuthFailedError) GetResponse() map[string]any {
	resp := map[string]any{
		"success": false,
		"value":   e.Value,
	}
	if e.RedirectURL != "" {
		resp["redirect_url"] = e.RedirectURL
	}
	return resp
}
