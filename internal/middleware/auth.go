package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const HeaderUserID = "X-User-Id"

// GuestPrefix marks header-identified callers when tokens are verified, so a
// guest id can never name the same cart as a token subject.
const GuestPrefix = "guest:"

var errNoSubject = errors.New("token has no subject")

// Auth identifies the caller of /me routes. A valid bearer token makes the
// caller authenticated and its subject the user id. Without a token the
// X-User-Id header names an unauthenticated caller, namespaced under
// GuestPrefix. With an empty secret tokens are forwarded upstream unverified
// and X-User-Id is taken as is.
func Auth(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			uid := strings.TrimSpace(r.Header.Get(HeaderUserID))

			switch {
			case token != "" && secret != "":
				sub, err := verify(token, secret)
				if err != nil {
					logger.Info("rejected bearer token", zap.Error(err), zap.String("correlationId", GetCorrelationID(r.Context())))
					WriteError(w, r, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				uid = sub
			case secret != "" && uid != "":
				uid = GuestPrefix + uid
			}

			if uid == "" {
				WriteError(w, r, http.StatusBadRequest, "missing required header: X-User-Id")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), uid, token)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func verify(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errNoSubject
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid, nil
	}
	return "", errNoSubject
}
