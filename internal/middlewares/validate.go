package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type validatedBodyKey struct{}

// Validate decodes the JSON request body into T, validates it and stores it
// in the request context for the handler.
func Validate[T any](next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body T

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			respondValidationError(w)
			return
		}

		if err := validate.Struct(body); err != nil {
			respondValidationError(w)
			return
		}

		ctx := context.WithValue(r.Context(), validatedBodyKey{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetValidatedBody returns the body stored by Validate.
func GetValidatedBody[T any](ctx context.Context) (T, bool) {
	body, ok := ctx.Value(validatedBodyKey{}).(T)
	return body, ok
}

func respondValidationError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"errors":["VALIDATION_FAILED"]}`))
}
