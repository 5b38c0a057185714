package services

import (
	"net/http"
	"net/url"
	"strings"

	"lms/internal/configuration"
	"lms/internal/handlers"
	h "lms/internal/helpers"
	"lms/internal/models"

	"go.uber.org/zap"
)

// HandleLoginRefresh re-issues the session cookies for an already
// authenticated caller, pushing the expiry another four weeks out.
func (s AuthService) HandleLoginRefresh(w http.ResponseWriter, r *http.Request) {
	logger := zap.L().With(zap.String("path", r.URL.Path))

	claims, err := h.GetSessionClaims(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}

	var user models.User
	result := s.DB.Where("id = ?", claims.UserID).First(&user)
	if result.Error != nil {
		logger.Error("Failed to load user for refresh", zap.Error(result.Error))
		handlers.RespondWithError(w, http.StatusInternalServerError, []string{"INTERNAL_SERVER_ERROR"})
		return
	}

	sessionID, err := h.SetLoggedInCookies(w, s.AuthConfig, &user)
	if err != nil {
		logger.Error("Failed to refresh session cookies", zap.Error(err))
		handlers.RespondWithError(w, http.StatusInternalServerError, []string{"INTERNAL_SERVER_ERROR"})
		return
	}

	if s.AuthConfig.Features.PreventConcurrentLogins {
		result := s.DB.Model(&models.UserProfile{}).
			Where("user_id = ?", claims.UserID).
			Update("current_session_id", sessionID)
		if result.Error != nil {
			logger.Warn("Failed to record refreshed session", zap.Error(result.Error))
		}
	}

	handlers.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleLogout always succeeds, for anonymous callers too. The response is
// the logout page context: the validated redirect target plus the
// relying-party logout URIs the client must fan out to.
func (s AuthService) HandleLogout(w http.ResponseWriter, r *http.Request) {
	logger := zap.L().With(zap.String("path", r.URL.Path))

	if claims, err := h.GetSessionClaims(r.Context()); err == nil {
		if s.AuthConfig.Features.PreventConcurrentLogins {
			result := s.DB.Model(&models.UserProfile{}).
				Where("user_id = ?", claims.UserID).
				Update("current_session_id", "")
			if result.Error != nil {
				logger.Warn("Failed to clear session record", zap.Error(result.Error))
			}
		}
		s.audit(logger, models.AuditEntry{
			Message:  "Logout",
			Action:   configuration.AuditLogout,
			UserID:   claims.UserID.String(),
			Username: claims.Username,
		})
	}

	h.DeleteLoggedInCookies(w, s.AuthConfig)

	context := models.LogoutContext{
		Target:     s.logoutTarget(r),
		LogoutURIs: s.collectLogoutURIs(logger, r.Referer()),
	}
	context.EnterpriseTarget = h.IsEnterpriseTarget(context.Target)

	handlers.RespondWithJSON(w, http.StatusOK, context)
}

// logoutTarget validates the requested post-logout destination against the
// safe-host allow-list, falling back to the root path.
func (s AuthService) logoutTarget(r *http.Request) string {
	target := r.URL.Query().Get("redirect_url")
	if target == "" {
		target = r.URL.Query().Get("next")
	}
	if target == "" {
		return "/"
	}

	target = h.RestorePlusSigns(target)
	if !h.IsSafeRedirect(target, s.safeHosts()) {
		return "/"
	}
	return target
}

func (s AuthService) safeHosts() []string {
	hosts := s.AuthConfig.SafeRedirectHosts
	if parsed, err := url.Parse(s.AuthConfig.LMSRootURL); err == nil && parsed.Host != "" {
		hosts = append(hosts, parsed.Host)
	}
	return hosts
}

// collectLogoutURIs merges the registered relying parties with the statically
// configured logout endpoints, tags each with no_redirect=1 and drops any URI
// the referrer prefixes, since that party initiated this logout and has
// already ended its own session. The match is a prefix, not a host: one host
// may serve several relying parties and only the originating one is excluded.
func (s AuthService) collectLogoutURIs(logger *zap.Logger, referrer string) []string {
	var parties []models.RelyingParty
	result := s.DB.Where("logout_uri <> ''").Find(&parties)
	if result.Error != nil {
		logger.Error("Failed to load relying parties", zap.Error(result.Error))
	}

	uris := make([]string, 0, len(parties)+len(s.AuthConfig.RelyingPartyLogoutURIs))
	for _, party := range parties {
		uris = append(uris, party.LogoutURI)
	}
	uris = append(uris, s.AuthConfig.RelyingPartyLogoutURIs...)

	referrer = strings.Trim(referrer, "/")

	tagged := make([]string, 0, len(uris))
	seen := make(map[string]bool, len(uris))
	for _, uri := range uris {
		if _, err := url.Parse(uri); err != nil {
			logger.Warn("Skipping malformed logout URI", zap.String("uri", uri))
			continue
		}
		if referrer != "" && strings.HasPrefix(uri, referrer) {
			continue
		}

		built := h.BuildLogoutURL(uri)
		if !seen[built] {
			seen[built] = true
			tagged = append(tagged, built)
		}
	}
	return tagged
}
