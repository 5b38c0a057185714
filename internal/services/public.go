package services

import (
	"net/http"
	"net/url"

	"lms/internal/handlers"
	m "lms/internal/middlewares"
	"lms/internal/models"

	"github.com/go-chi/chi/v5"
)

// PublicService serves the course-authoring site's public pages. The
// authoring site has no login form of its own: sign-in and registration are
// proxied to the LMS.
type PublicService struct {
	AuthConfig models.AuthConfig
}

func (s PublicService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", s.HandleLoginRedirect)
	r.Get("/register", s.HandleRegisterRedirect)
	r.Get("/howitworks", s.HandleHowItWorks)
	r.Get("/accessibility", s.HandleAccessibility)
	return r
}

// HandleLoginRedirect bounces the browser to the LMS login page, carrying the
// caller's destination as an absolute next URL.
func (s PublicService) HandleLoginRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.lmsAuthURL("/login", r), http.StatusFound)
}

// HandleRegisterRedirect permanently redirects to the LMS registration page.
func (s PublicService) HandleRegisterRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.lmsAuthURL("/register", r), http.StatusMovedPermanently)
}

// lmsAuthURL builds the LMS page URL, carrying the caller's destination as an
// absolute next URL. Without a next parameter the query string is omitted and
// the LMS applies its own post-login default.
func (s PublicService) lmsAuthURL(page string, r *http.Request) string {
	next := r.URL.Query().Get("next")
	if next == "" {
		return s.AuthConfig.LMSRootURL + page
	}

	// The LMS needs an absolute URL to send the browser back here.
	if parsed, err := url.Parse(next); err == nil && parsed.Host == "" {
		scheme := "http"
		if r.TLS != nil || s.AuthConfig.SecureCookies {
			scheme = "https"
		}
		next = scheme + "://" + r.Host + next
	}

	return s.AuthConfig.LMSRootURL + page + "?next=" + url.QueryEscape(next)
}

// HandleHowItWorks serves the marketing page context to anonymous visitors
// and sends signed-in users straight to their dashboard.
func (s PublicService) HandleHowItWorks(w http.ResponseWriter, r *http.Request) {
	if m.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/home/", http.StatusFound)
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, map[string]any{
		"page":          "howitworks",
		"platform_name": s.AuthConfig.PlatformName,
		"lms_root_url":  s.AuthConfig.LMSRootURL,
	})
}

// HandleAccessibility serves the accessibility feedback page context when the
// feature switch is on.
func (s PublicService) HandleAccessibility(w http.ResponseWriter, r *http.Request) {
	if !s.AuthConfig.Features.AccessibilityPageEnabled {
		http.NotFound(w, r)
		return
	}

	handlers.RespondWithJSON(w, http.StatusOK, map[string]any{
		"page":          "accessibility",
		"platform_name": s.AuthConfig.PlatformName,
		"support_url":   s.AuthConfig.SupportURL,
	})
}
