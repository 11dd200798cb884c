package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maxxlamenaace/roomio-be/internal/models"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// GenerateJWT creates a new JWT for a given user.
func GenerateJWT(user models.User) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ValidateJWT parses and validates a JWT string.
func ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// tokenFromRequest extracts a session token from the Authorization
// header, falling back to the session cookie.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, "Bearer ")
		if len(parts) == 2 {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// CurrentClaims returns the requester's claims from the request context,
// or nil when the request is unauthenticated.
func CurrentClaims(r *http.Request) *Claims {
	claims, ok := r.Context().Value(UserClaimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// WithUser resolves the session token, if any, and puts the requester's
// claims on the request context. Unauthenticated requests pass through.
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := ValidateJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser guards routes that need an authenticated session.
// Requests without a valid token are redirected to the login form.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentClaims(r) == nil {
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
