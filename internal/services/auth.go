package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"lms/internal/audit"
	"lms/internal/cache"
	"lms/internal/configuration"
	apierrors "lms/internal/errors"
	"lms/internal/events"
	"lms/internal/handlers"
	h "lms/internal/helpers"
	"lms/internal/messaging"
	m "lms/internal/middlewares"
	"lms/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthService struct {
	DB            *gorm.DB
	Cache         cache.ICache
	AuthConfig    models.AuthConfig
	Analytics     messaging.IPublisher
	Notifications messaging.IPublisher
	AuditLogger   audit.IAuditLogger
}

func (s AuthService) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(m.Validate[models.AuthLoginBody]).Post("/login_ajax", s.HandleLogin)
	r.Post("/user_api/v1/account/login_session/", s.HandleLoginSession)
	// The login endpoints answer rate limiting in-flow to honor the legacy
	// response contract; refresh has no such contract and uses the middleware.
	r.With(m.RateLimit(s.Cache, s.AuthConfig.TrustedProxies, s.AuthConfig.Features.RateLimitPerMinute)).
		Post("/login_refresh", s.HandleLoginRefresh)
	r.Get("/logout", s.HandleLogout)
	r.Post("/logout", s.HandleLogout)
	return r
}

// HandleLogin serves the legacy login contract: failures are written at
// status 200 with a success flag unless the 400-on-error rollout flag is
// enabled. Unlinked third-party attempts get a plain-text 403 so the proxy
// layer can distinguish them.
func (s AuthService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := zap.L().With(zap.String("path", r.URL.Path))

	body, ok := m.GetValidatedBody[models.AuthLoginBody](r.Context())
	if !ok {
		handlers.RespondWithError(w, http.StatusBadRequest, []string{"INVALID_BODY"})
		return
	}

	outcome, err := s.Login(logger, w, r, body)
	if err != nil {
		var authErr *apierrors.AuthFailedError
		if errors.As(err, &authErr) {
			if authErr.Kind == apierrors.ThirdPartyUnlinked {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(authErr.Value))
				return
			}

			status := http.StatusOK
			if s.AuthConfig.Features.LoginErrorStatusCode400 {
				status = http.StatusBadRequest
			}
			handlers.RespondWithJSON(w, status, authErr.GetResponse())
			return
		}

		logger.Error("Login failed", zap.Error(err))
		handlers.RespondWithError(w, http.StatusInternalServerError, []string{"INTERNAL_SERVER_ERROR"})
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, outcome)
}

// Login runs the credential checks in a fixed order, stopping at the first
// failure: candidate resolution, lockout, domain SSO policy, rate limit,
// password, account activation, password policy. Every rejection path returns
// an AuthFailedError; anything else is an infrastructure error.
func (s AuthService) Login(
	logger *zap.Logger,
	w http.ResponseWriter,
	r *http.Request,
	body models.AuthLoginBody,
) (models.LoginOutcome, error) {
	thirdParty := body.PipelineToken != "" && body.Email == "" && body.Password == ""

	var user *models.User
	var pipeline models.Pipeline

	if thirdParty {
		resolved, p, err := s.resolvePipelineUser(logger, body.PipelineToken)
		if err != nil {
			return models.LoginOutcome{}, err
		}
		user = resolved
		pipeline = p
	} else {
		user = s.getUserByEmail(logger, body.Email)
	}

	if s.AuthConfig.Features.LockoutEnabled && user != nil {
		failures := s.loadFailures(user.ID)
		if failures.IsLockedOut(s.AuthConfig.Features.LockoutMaxFailures, time.Now()) {
			s.recordFailure(logger, user, body.Email, apierrors.AccountLocked, configuration.AuditLoginAccountLocked)
			return models.LoginOutcome{}, apierrors.NewAuthFailedError(
				apierrors.AccountLocked, apierrors.AccountLockedMsg)
		}
	}

	if !thirdParty {
		if err := s.checkDomainSSOPolicy(logger, body.Email); err != nil {
			return models.LoginOutcome{}, err
		}
	}

	if err := s.checkRateLimit(logger, r); err != nil {
		return models.LoginOutcome{}, err
	}

	if !thirdParty {
		if user == nil {
			s.recordFailure(logger, nil, body.Email, apierrors.UnknownUser, configuration.AuditLoginUnknownUser)
			return models.LoginOutcome{}, apierrors.NewAuthFailedError(
				apierrors.UnknownUser, apierrors.GenericLoginFailureMsg)
		}

		if !h.ComparePassword(body.Password, user.HashedPassword) {
			s.recordFailure(logger, user, body.Email, apierrors.InvalidPassword, configuration.AuditLoginInvalidPassword)
			return models.LoginOutcome{}, apierrors.NewAuthFailedError(
				apierrors.InvalidPassword, apierrors.GenericLoginFailureMsg)
		}
	}

	if !user.IsActive {
		// An inactive account still counts against the lockout threshold:
		// the attempt did not produce a session.
		s.bumpFailureCount(logger, user)
		s.sendActivationEmail(user)
		s.audit(logger, models.AuditEntry{
			Message: "Login blocked, account not activated",
			Action:  configuration.AuditLoginInactiveAccount,
			UserID:  user.ID.String(),
		})
		return models.LoginOutcome{}, apierrors.NewAuthFailedError(
			apierrors.AccountNotActivated,
			fmt.Sprintf(
				"In order to sign in, you need to activate your account. "+
					"We just sent an activation link to %s.", user.Email),
		)
	}

	if !thirdParty {
		if err := s.checkPasswordPolicy(logger, user, body.Password); err != nil {
			return models.LoginOutcome{}, err
		}
	}

	if err := s.establishSession(logger, w, user); err != nil {
		// Session-store failures are infrastructure errors, never a
		// user-recoverable rejection.
		logger.Error("Failed to establish session", zap.Error(err))
		return models.LoginOutcome{}, err
	}

	s.clearFailures(logger, user.ID)
	s.trackAuthenticated(user, body, pipeline.Provider)
	s.audit(logger, models.AuditEntry{
		Message:  "Login succeeded",
		Action:   configuration.AuditLoginSucceeded,
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})

	outcome := models.LoginOutcome{Success: true}
	if thirdParty {
		outcome.RedirectURL = pipeline.CompleteURL
		if err := s.Cache.DeletePipeline(body.PipelineToken); err != nil {
			logger.Warn("Failed to delete completed pipeline", zap.Error(err))
		}
	}
	return outcome, nil
}

// resolvePipelineUser turns an in-progress third-party handshake into a local
// user through the provider link table.
func (s AuthService) resolvePipelineUser(
	logger *zap.Logger,
	token string,
) (*models.User, models.Pipeline, error) {
	pipeline, found, err := s.Cache.GetPipeline(token)
	if err != nil {
		return nil, models.Pipeline{}, fmt.Errorf("loading pipeline: %w", err)
	}
	if !found {
		logger.Debug("Pipeline token not found or expired")
		return nil, models.Pipeline{}, apierrors.NewAuthFailedError(
			apierrors.ThirdPartyUnlinked, s.unlinkedMessage(""))
	}

	var link models.ThirdPartyLink
	result := s.DB.Preload("User").
		Where("provider = ? AND uid = ?", pipeline.Provider, pipeline.UID).
		First(&link)
	if result.Error != nil || link.User == nil {
		s.audit(logger, models.AuditEntry{
			Message: "Third-party login attempt without a linked account",
			Action:  configuration.AuditLoginUnlinkedProvider,
			Filter:  map[string]string{"provider": pipeline.Provider},
		})
		return nil, models.Pipeline{}, apierrors.NewAuthFailedError(
			apierrors.ThirdPartyUnlinked, s.unlinkedMessage(pipeline.Provider))
	}

	return link.User, pipeline, nil
}

func (s AuthService) unlinkedMessage(provider string) string {
	if provider == "" {
		provider = "your identity provider"
	}
	return fmt.Sprintf(
		"You've successfully signed in to your %s account, but this account "+
			"isn't linked with your %s account yet. To link your accounts, sign "+
			"in now using your %s password.",
		provider, s.AuthConfig.PlatformName, s.AuthConfig.PlatformName)
}

// getUserByEmail returns nil for an unknown address. The miss is logged, not
// surfaced: the caller must answer with the same message as a wrong password.
func (s AuthService) getUserByEmail(logger *zap.Logger, email string) *models.User {
	var user models.User
	result := s.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if s.AuthConfig.Features.SquelchPIIInLogs {
				logger.Warn("Login attempt for unknown email")
			} else {
				logger.Warn("Login attempt for unknown email", zap.String("email", email))
			}
		} else {
			logger.Error("Failed to load user", zap.Error(result.Error))
		}
		return nil
	}
	return &user
}

func (s AuthService) loadFailures(userID uuid.UUID) *models.LoginFailures {
	var failures models.LoginFailures
	result := s.DB.Where("user_id = ?", userID).First(&failures)
	if result.Error != nil {
		return nil
	}
	return &failures
}

// checkDomainSSOPolicy rejects password logins for accounts under a domain
// that mandates SSO, unless the address is allow-listed.
func (s AuthService) checkDomainSSOPolicy(logger *zap.Logger, email string) error {
	domain := s.AuthConfig.Features.ThirdPartyAuthOnlyDomain
	if domain == "" {
		return nil
	}

	candidate := (&models.User{Email: email}).EmailDomain()
	if candidate != domain {
		return nil
	}

	var allowed models.AllowedAuthUser
	result := s.DB.Where("site = ? AND email = ?", s.AuthConfig.LMSRootURL, email).
		First(&allowed)
	if result.Error == nil {
		return nil
	}

	provider := s.AuthConfig.Features.ThirdPartyAuthOnlyProvider
	s.audit(logger, models.AuditEntry{
		Message: "Password login rejected for SSO-only domain",
		Action:  configuration.AuditLoginDomainSSO,
		Filter:  map[string]string{"domain": domain},
	})
	return apierrors.NewAuthFailedError(
		apierrors.DomainRequiresSSO,
		fmt.Sprintf("As a %s user, you must login with your %s account.", domain, provider),
	)
}

func (s AuthService) checkRateLimit(logger *zap.Logger, r *http.Request) error {
	perMinute := s.AuthConfig.Features.RateLimitPerMinute
	if perMinute <= 0 || s.Cache == nil {
		return nil
	}

	clientIP := m.ResolveClientIP(r, s.AuthConfig.TrustedProxies)
	retryAfter, err := s.Cache.GetRateLimit(clientIP, perMinute)
	if err != nil {
		logger.Error("Rate limit check failed", zap.Error(err))
		return nil
	}
	if retryAfter > 0 {
		s.audit(logger, models.AuditEntry{
			Message: "Login rate limit exceeded",
			Action:  configuration.AuditLoginRateLimited,
		})
		return apierrors.NewAuthFailedError(apierrors.RateLimited, apierrors.RateLimitedMsg)
	}
	return nil
}

// checkPasswordPolicy applies the compliance rollout: "warn" lets the login
// proceed, "block" forces a reset.
func (s AuthService) checkPasswordPolicy(logger *zap.Logger, user *models.User, password string) error {
	severity := s.AuthConfig.Features.PasswordPolicySeverity
	if severity == "" || severity == "off" {
		return nil
	}

	minLength := s.AuthConfig.Features.PasswordPolicyMinLength
	if minLength <= 0 || len(h.NormalizePassword(password)) >= minLength {
		return nil
	}

	if severity == "warn" {
		logger.Warn("Password does not meet the current policy",
			zap.String("user_id", user.ID.String()))
		return nil
	}

	events.NewPasswordReset(s.Notifications, events.PasswordResetPayload{
		Email:    user.Email,
		Reason:   "Your current password does not meet the platform password requirements.",
		ResetURL: s.AuthConfig.LMSRootURL + "/reset-password",
	}).Trigger()

	s.audit(logger, models.AuditEntry{
		Message: "Login blocked, password fails the compliance policy",
		Action:  configuration.AuditLoginPasswordPolicy,
		UserID:  user.ID.String(),
	})
	return apierrors.NewAuthFailedError(
		apierrors.PasswordPolicyViolation,
		fmt.Sprintf(
			"Your password does not meet the %s password requirements. "+
				"We just sent a password-reset link to %s.",
			s.AuthConfig.PlatformName, user.Email),
	)
}

// establishSession writes the session cookies and the session bookkeeping.
// When concurrent-login prevention is on, the new session id displaces the
// previous one.
func (s AuthService) establishSession(logger *zap.Logger, w http.ResponseWriter, user *models.User) error {
	sessionID, err := h.SetLoggedInCookies(w, s.AuthConfig, user)
	if err != nil {
		return fmt.Errorf("setting session cookies: %w", err)
	}

	if s.AuthConfig.Features.PreventConcurrentLogins {
		result := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_session_id"}),
		}).Create(&models.UserProfile{UserID: user.ID, CurrentSessionID: sessionID})
		if result.Error != nil {
			return fmt.Errorf("recording current session: %w", result.Error)
		}
	}

	if !s.AuthConfig.Features.DisableLastLoginUpdate {
		now := time.Now()
		result := s.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("last_login", now)
		if result.Error != nil {
			logger.Warn("Failed to update last login", zap.Error(result.Error))
		}
	}

	return nil
}

// recordFailure writes the audit entry for a rejected attempt and, for
// credential failures, bumps the consecutive-failure counter.
func (s AuthService) recordFailure(
	logger *zap.Logger,
	user *models.User,
	email string,
	kind apierrors.FailureKind,
	action string,
) {
	entry := models.AuditEntry{
		Message: fmt.Sprintf("Login failed (%s)", kind),
		Action:  action,
	}
	if user != nil {
		entry.UserID = user.ID.String()
	}
	if !s.AuthConfig.Features.SquelchPIIInLogs {
		entry.Email = email
		if user != nil {
			entry.Username = user.Username
		}
	}
	s.audit(logger, entry)

	if kind != apierrors.UnknownUser && kind != apierrors.InvalidPassword {
		return
	}
	s.bumpFailureCount(logger, user)
}

// bumpFailureCount increments the consecutive-failure counter for an existing
// user and arms the lockout window once the threshold is reached.
func (s AuthService) bumpFailureCount(logger *zap.Logger, user *models.User) {
	if !s.AuthConfig.Features.LockoutEnabled || user == nil {
		return
	}

	failures := s.loadFailures(user.ID)
	if failures == nil {
		failures = &models.LoginFailures{UserID: user.ID}
	}
	failures.FailureCount++
	if failures.FailureCount >= s.AuthConfig.Features.LockoutMaxFailures {
		until := time.Now().Add(time.Duration(s.AuthConfig.Features.LockoutMinutes) * time.Minute)
		failures.LockoutUntil = &until
	}

	if err := s.DB.Save(failures).Error; err != nil {
		logger.Error("Failed to record login failure", zap.Error(err))
	}
}

func (s AuthService) clearFailures(logger *zap.Logger, userID uuid.UUID) {
	if !s.AuthConfig.Features.LockoutEnabled {
		return
	}
	result := s.DB.Where("user_id = ?", userID).Delete(&models.LoginFailures{})
	if result.Error != nil {
		logger.Warn("Failed to clear login failures", zap.Error(result.Error))
	}
}

func (s AuthService) sendActivationEmail(user *models.User) {
	events.NewAccountActivation(s.Notifications, events.AccountActivationPayload{
		Email:         user.Email,
		ActivationURL: s.AuthConfig.LMSRootURL + "/activate/" + user.ID.String(),
	}).Trigger()
}

// trackAuthenticated emits the analytics event for a successful login.
// Fire-and-forget.
func (s AuthService) trackAuthenticated(user *models.User, body models.AuthLoginBody, provider string) {
	payload := events.UserAuthenticatedPayload{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Event:    configuration.EventUserAuthenticated,
		CourseID: body.CourseID,
		Provider: provider,
	}
	if payload.CourseID == "" {
		payload.CourseID = h.EnrollCourseIDFromAnalytics(body.Analytics)
	}
	events.NewUserAuthenticated(s.Analytics, payload).Trigger()
}

func (s AuthService) audit(logger *zap.Logger, entry models.AuditEntry) {
	if s.AuditLogger == nil {
		return
	}
	if err := s.AuditLogger.Send(entry); err != nil {
		logger.Error("Failed to write audit entry", zap.Error(err))
	}
}
