package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"academy-platform/internal/tenant"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

// AuthMiddleware validates dashboard JWTs issued by the identity provider and
// puts the user id, role and dealer scope from the claims into the context.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgMissingAuthHeader)
				return
			}

			// Check for Bearer token format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgInvalidAuthHeader)
				return
			}

			// Parse and validate token
			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgTokenExpired)
				} else {
					RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgInvalidToken)
				}
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				logger.Debug("Invalid token")
				RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			userID, _ := claims["user_id"].(string)
			role, _ := claims["role"].(string)
			dealerID, _ := claims["dealer_id"].(string)
			if userID == "" || role == "" {
				logger.Warn("Token is missing user claims")
				RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			// Dashboard tokens always belong to exactly one dealer.
			scope, err := tenant.ParseScope(dealerID)
			if err != nil {
				logger.Warn("Token carries no valid dealer",
					zap.String("user_id", userID),
					zap.String("dealer_id", dealerID),
				)
				RespondWithLocalizedError(w, r, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, role)
			ctx = tenant.WithScope(ctx, scope)
			recordDealer(ctx, scope.String())

			logger.Debug("User authenticated",
				zap.String("user_id", userID),
				zap.String("role", role),
				zap.String("dealer_id", scope.String()),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
