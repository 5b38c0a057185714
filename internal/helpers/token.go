package helpers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lms/internal/configuration"
	"lms/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewSessionToken creates the session JWT carried by the session cookie.
// SessionID identifies this login for concurrent-login enforcement.
func NewSessionToken(jwtSecret string, user *models.User, sessionID string) (string, error) {
	claims := models.SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		SessionID: sessionID,
		Issuer:    configuration.AppName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  &jwt.NumericDate{Time: time.Now()},
			ExpiresAt: &jwt.NumericDate{Time: time.Now().Add(configuration.SessionExpirySeconds * time.Second)},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ParseSessionToken parses and validates a session JWT. Signature, expiry and
// issuer are checked.
func ParseSessionToken(jwtSecret string, tokenString string) (models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		},
	)
	if err != nil || claims.Issuer != configuration.AppName {
		return models.SessionClaims{}, errors.New("invalid session token")
	}

	return *claims, nil
}

// SetLoggedInCookies establishes the session cookie plus the logged-in
// marketing cookie with a 4-week expiry. Returns the session id written into
// the token.
func SetLoggedInCookies(
	w http.ResponseWriter,
	config models.AuthConfig,
	user *models.User,
) (string, error) {
	sessionID := uuid.New().String()

	token, err := NewSessionToken(config.JWTSecret, user, sessionID)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     configuration.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   configuration.SessionExpirySeconds,
		HttpOnly: true,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	// Readable by the external marketing site to detect login state.
	http.SetCookie(w, &http.Cookie{
		Name:     configuration.LoggedInCookieName,
		Value:    "true",
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   configuration.SessionExpirySeconds,
		HttpOnly: false,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return sessionID, nil
}

// DeleteLoggedInCookies expires both the session cookie and the marketing
// cookie.
func DeleteLoggedInCookies(w http.ResponseWriter, config models.AuthConfig) {
	for _, name := range []string{configuration.SessionCookieName, configuration.LoggedInCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			Domain: config.CookieDomain,
			MaxAge: -1,
		})
	}
}

// GetSessionClaims returns the claims stored by the authenticate middleware.
func GetSessionClaims(c context.Context) (models.SessionClaims, error) {
	value, ok := c.Value(models.SessionClaimKey{}).(models.SessionClaims)
	if !ok {
		return models.SessionClaims{}, errors.New("invalid session claims")
	}
	return value, nil
}
