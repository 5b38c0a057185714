package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "lms/internal/errors"
	"lms/internal/middlewares"
	"lms/internal/models"

	"go.uber.org/zap"
)

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondWithError(w http.ResponseWriter, status int, codes []string) {
	RespondWithJSON(w, status, map[string]any{"errors": codes})
}

// CreateHandler adapts a service method operating on a validated body into an
// http.HandlerFunc. The body must have been decoded by the Validate
// middleware earlier in the chain.
func CreateHandler[B any, R any](
	fn func(logger *zap.Logger, claims models.SessionClaims, body B) (R, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zap.L().With(zap.String("path", r.URL.Path))

		body, ok := middlewares.GetValidatedBody[B](r.Context())
		if !ok {
			RespondWithError(w, http.StatusBadRequest, []string{"INVALID_BODY"})
			return
		}

		claims, _ := r.Context().Value(models.SessionClaimKey{}).(models.SessionClaims)

		resp, err := fn(logger, claims, body)
		if err != nil {
			var apiErr *apierrors.APIError
			if errors.As(err, &apiErr) {
				RespondWithError(w, apiErr.Status, []string{apiErr.Code})
				return
			}
			logger.Error("Handler failed", zap.Error(err))
			RespondWithError(w, http.StatusInternalServerError, []string{"INTERNAL_SERVER_ERROR"})
			return
		}

		RespondWithJSON(w, http.StatusOK, resp)
	}
}
