package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"familytree-backend/pkg/auth"
	"familytree-backend/pkg/common"
)

// Authenticate validates the bearer token on every request and puts the
// authenticated account into the request context. Rate limits apply per
// client IP before validation and per account after.
func Authenticate(validator *auth.JWTValidator) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(100)      // 100 requests per minute per IP
	userLimiter := auth.NewUserRateLimiter(200)  // 200 requests per minute per account

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, _ := ipLimiter.Allow(r.Context(), clientIP)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				authHeader = r.Header.Get("authorization")
			}
			if authHeader == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondUnauthorized(w, "Invalid authorization header format")
				return
			}

			var claims *auth.Claims

			// Behind API Gateway the JWT authorizer has already run; the
			// Lambda adapter forwards the verified identity as headers.
			if parts[1] == "api-gateway-validated" && r.Header.Get("X-API-Gateway-Authorized") == "true" {
				accountID := r.Header.Get("X-Account-ID")
				if accountID == "" {
					respondUnauthorized(w, "Missing account context from API Gateway")
					return
				}
				claims = &auth.Claims{
					AccountID: accountID,
					Email:     r.Header.Get("X-Account-Email"),
				}
			} else {
				var err error
				claims, err = validator.ValidateToken(parts[1])
				if err != nil {
					switch {
					case errors.Is(err, auth.ErrExpiredToken):
						respondUnauthorized(w, "Token has expired")
					case errors.Is(err, auth.ErrInvalidSignature):
						respondUnauthorized(w, "Invalid token signature")
					default:
						respondUnauthorized(w, "Invalid token")
					}
					return
				}
			}

			allowed, _ = userLimiter.Allow(r.Context(), claims.AccountID)
			if !allowed {
				respondWithError(w, http.StatusTooManyRequests, "Account rate limit exceeded")
				return
			}

			userCtx := &auth.UserContext{
				AccountID: claims.AccountID,
				Email:     claims.Email,
			}

			ctx := auth.SetUserInContext(r.Context(), userCtx)
			ctx = common.WithAccountID(ctx, claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getClientIP extracts the originating client IP, preferring the
// forwarding headers set by API Gateway and load balancers
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
	})
}
