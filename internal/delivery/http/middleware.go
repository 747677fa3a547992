package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vogiaan1904/ticketbottle-checkin/internal/auth"
	pkgErrors "github.com/vogiaan1904/ticketbottle-checkin/pkg/errors"
	"github.com/vogiaan1904/ticketbottle-checkin/pkg/logger"
)

type operatorCtxKey struct{}

// OperatorFromContext returns the operator the auth middleware put on
// the request context.
func OperatorFromContext(ctx context.Context) (auth.Operator, bool) {
	op, ok := ctx.Value(operatorCtxKey{}).(auth.Operator)
	return op, ok
}

// OperatorAuth validates the Bearer token on scanning-station requests
// and attaches the resolved operator to the request context.
func OperatorAuth(tm *auth.TokenManager, l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				respondError(w, http.StatusUnauthorized, "Authorization header must be a Bearer token")
				return
			}

			op, err := tm.Parse(tokenStr)
			if err != nil {
				l.Warnf(r.Context(), "delivery.http.OperatorAuth: %v", err)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), operatorCtxKey{}, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, &pkgErrors.HTTPError{
		Code:       statusCode,
		Message:    message,
		StatusCode: statusCode,
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch parsed := err.(type) {
	case *pkgErrors.HTTPError:
		statusCode := parsed.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusBadRequest
		}
		respondJSON(w, statusCode, map[string]interface{}{
			"error": parsed.Message,
			"code":  parsed.Code,
		})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Internal server error",
			"code":  http.StatusInternalServerError,
		})
	}
}
