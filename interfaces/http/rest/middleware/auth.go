package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"mindmap/pkg/auth"
	"mindmap/pkg/common"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"go.uber.org/zap"
)

// Authenticate resolves the calling user and applies the per-user rate limit.
// Requests proxied from API Gateway with a JWT or Lambda authorizer are trusted;
// everything else must carry a bearer token accepted by validator.
func Authenticate(validator *auth.JWTValidator, limiter *auth.UserRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFromGateway(r)
			if !ok {
				if validator == nil {
					logger.Error("Authentication is not configured")
					common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication system error")
					return
				}

				token := extractToken(r)
				if token == "" {
					common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Missing authentication token")
					return
				}

				var err error
				claims, err = validator.ValidateToken(token)
				if err != nil {
					logger.Warn("Invalid token",
						zap.Error(err),
						zap.String("path", r.URL.Path),
					)
					common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, tokenErrorMessage(err))
					return
				}
			}

			if limiter != nil {
				allowed, err := limiter.Allow(r.Context(), claims.UserID)
				if err != nil {
					logger.Error("User rate limiter error", zap.Error(err))
					common.RespondError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "Internal server error")
					return
				}
				if !allowed {
					retry := int(math.Ceil(limiter.RetryAfter(claims.UserID).Seconds()))
					w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
					common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "User rate limit exceeded")
					return
				}
			}

			ctx := auth.SetUserInContext(r.Context(), claims)
			ctx = common.WithUserID(ctx, claims.UserID)

			logger.Debug("Request authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFromGateway reads the subject that an API Gateway authorizer already validated
func claimsFromGateway(r *http.Request) (*auth.Claims, bool) {
	proxyCtx, ok := core.GetAPIGatewayV2ContextFromContext(r.Context())
	if !ok || proxyCtx.Authorizer == nil {
		return nil, false
	}

	if jwtAuth := proxyCtx.Authorizer.JWT; jwtAuth != nil {
		if sub := jwtAuth.Claims["sub"]; sub != "" {
			return &auth.Claims{UserID: sub, Email: jwtAuth.Claims["email"]}, true
		}
	}
	if sub, ok := proxyCtx.Authorizer.Lambda["sub"].(string); ok && sub != "" {
		email, _ := proxyCtx.Authorizer.Lambda["email"].(string)
		return &auth.Claims{UserID: sub, Email: email}, true
	}
	return nil, false
}

// extractToken extracts the JWT token from the Authorization header or the auth cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return authHeader
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid token signature"
	default:
		return "Invalid token"
	}
}
