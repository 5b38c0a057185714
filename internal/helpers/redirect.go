package helpers

import (
	"net/url"
	"regexp"
	"strings"
)

var enterpriseCoursePattern = regexp.MustCompile(`^/enterprise/[a-z0-9\-]+/course`)

// IsSafeRedirect reports whether target is an acceptable post-login/logout
// destination: a relative path, or an absolute URL whose host is on the
// allow-list.
func IsSafeRedirect(target string, allowedHosts []string) bool {
	if target == "" {
		return false
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}

	// Reject protocol-relative URLs ("//evil.com/") and backslash tricks.
	if strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return false
	}

	if parsed.Host == "" && parsed.Scheme == "" {
		return strings.HasPrefix(parsed.Path, "/")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	for _, host := range allowedHosts {
		if strings.EqualFold(parsed.Host, host) {
			return true
		}
	}
	return false
}

// RestorePlusSigns undoes the damage done to unencoded next params. Some
// third-party apps send "?next=/courses/course-v1:ARTS+D1+2018_T/course/"
// without URL-encoding, so the '+' signs arrive decoded as spaces. Course
// keys never contain literal spaces, so turning them back is safe.
func RestorePlusSigns(target string) string {
	return strings.ReplaceAll(target, " ", "+")
}

// BuildLogoutURL appends no_redirect=1 to a relying party's logout URI so the
// downstream service does not bounce the browser again.
func BuildLogoutURL(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	query := parsed.Query()
	query.Set("no_redirect", "1")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// IsEnterpriseTarget reports whether the redirect target belongs to the
// enterprise course app.
func IsEnterpriseTarget(target string) bool {
	unquoted, err := url.PathUnescape(target)
	if err != nil {
		unquoted = target
	}
	return enterpriseCoursePattern.MatchString(unquoted)
}
