package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tutorgo-backend/internal/config"
	"tutorgo-backend/internal/models"
	"tutorgo-backend/internal/store"
	"tutorgo-backend/internal/utils"
)

// UserSource resolves a token subject to a stored user. A valid token for a
// deleted user must not pass the gate, so every request re-checks the store.
type UserSource interface {
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
}

// Claims represents the claims in the JWT token
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken generates a signed JWT for the given user
func GenerateToken(userID int64, email string, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken verifies signature, shape, and expiry, and returns the
// subject user id. Tokens minted by other stacks may carry the subject as
// either a string or a number, so both forms are accepted.
func ValidateToken(tokenString string, cfg *config.JWTConfig) (int64, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenMalformed
	}

	sub, ok := claims["sub"]
	if !ok {
		sub, ok = claims["user_id"]
	}
	if !ok {
		return 0, jwt.ErrTokenInvalidSubject
	}
	return normalizeSubject(sub)
}

func normalizeSubject(sub any) (int64, error) {
	switch v := sub.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, jwt.ErrTokenInvalidSubject
		}
		return id, nil
	case float64:
		return int64(v), nil
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, jwt.ErrTokenInvalidSubject
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: unexpected subject type %T", jwt.ErrTokenInvalidSubject, sub)
	}
}

// extractBearerToken pulls the token out of an "Authorization: Bearer x"
// header. The second return distinguishes a missing header from a present
// but malformed one.
func extractBearerToken(r *http.Request) (token string, present bool, err error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false, errors.New("missing authorization")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", true, errors.New("invalid header format")
	}
	return tokenParts[1], true, nil
}

// AuthMiddleware validates the bearer token, resolves the subject against
// the user store, and attaches the resulting identity to the request context
func AuthMiddleware(next http.HandlerFunc, cfg *config.JWTConfig, users UserSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, present, err := extractBearerToken(r)
		if err != nil {
			if !present {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "missing authorization")
			} else {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "invalid header format")
			}
			return
		}

		userID, err := ValidateToken(tokenString, cfg)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}

		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "user not found")
				return
			}
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "failed to resolve user")
			return
		}

		// Identity flows through the context without the credential
		user.PasswordHash = ""
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// OptionalAuthMiddleware attaches an identity when a valid bearer token is
// presented but lets the request through anonymously on any failure
func OptionalAuthMiddleware(next http.HandlerFunc, cfg *config.JWTConfig, users UserSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, _, err := extractBearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := ValidateToken(tokenString, cfg)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user.PasswordHash = ""
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	}
}
