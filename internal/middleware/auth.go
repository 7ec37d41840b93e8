package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/services"
	authjwt "github.com/Dias221467/social-connect/pkg/jwt"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := authjwt.TokenFromRequest(r)
			if err != nil {
				message := "Invalid token"
				if errors.Is(err, authjwt.ErrMissingToken) {
					message = "No token, authorization denied"
				}
				writeMessage(w, http.StatusUnauthorized, message)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				var svcErr *services.Error
				if errors.As(err, &svcErr) && svcErr.Kind == services.KindUnauthorized {
					writeMessage(w, http.StatusUnauthorized, svcErr.Message)
					return
				}
				logrus.WithError(err).Error("Failed to authenticate request")
				writeMessage(w, http.StatusInternalServerError, "Server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext returns the authenticated user, or nil outside
// AuthMiddleware.
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
