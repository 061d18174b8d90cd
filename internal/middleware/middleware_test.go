package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

type seen struct {
	user, token string
	called      bool
}

func captureCaller(s *seen) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.user = GetUserID(r.Context())
		s.token = GetBearerToken(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	valid := signed(t, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()}, secret)
	legacy := signed(t, jwt.MapClaims{"user_id": "bob"}, secret)
	expired := signed(t, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(-time.Hour).Unix()}, secret)
	forged := signed(t, jwt.MapClaims{"sub": "mallory"}, "other")

	tests := map[string]struct {
		secret     string
		authz      string
		userHeader string
		wantStatus int
		wantUser   string
		wantToken  string
	}{
		"valid token":                   {secret: secret, authz: "Bearer " + valid, wantStatus: 204, wantUser: "alice", wantToken: valid},
		"user_id claim":                 {secret: secret, authz: "bearer " + legacy, wantStatus: 204, wantUser: "bob", wantToken: legacy},
		"token wins over header":        {secret: secret, authz: "Bearer " + valid, userHeader: "eve", wantStatus: 204, wantUser: "alice", wantToken: valid},
		"expired token":                 {secret: secret, authz: "Bearer " + expired, wantStatus: 401},
		"forged token":                  {secret: secret, authz: "Bearer " + forged, wantStatus: 401},
		"guest with header":             {secret: secret, userHeader: "guest-1", wantStatus: 204, wantUser: "guest:guest-1"},
		"guest cannot claim a subject":  {secret: secret, userHeader: "alice", wantStatus: 204, wantUser: "guest:alice"},
		"no identity":                   {secret: secret, wantStatus: 400},
		"unverified token needs header": {authz: "Bearer opaque", userHeader: "carol", wantStatus: 204, wantUser: "carol", wantToken: "opaque"},
		"unverified token alone":        {authz: "Bearer opaque", wantStatus: 400},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var s seen
			h := Auth(tc.secret, zap.NewNop())(captureCaller(&s))

			req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
			if tc.authz != "" {
				req.Header.Set("Authorization", tc.authz)
			}
			if tc.userHeader != "" {
				req.Header.Set(HeaderUserID, tc.userHeader)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus != 204 {
				assert.False(t, s.called)
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Error)
				return
			}
			assert.Equal(t, tc.wantUser, s.user)
			assert.Equal(t, tc.wantToken, s.token)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLimiter(ctx, 1, 2, time.Minute)
	h := RateLimit(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit_GuestsShareAddressBucket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLimiter(ctx, 1, 1, time.Minute)
	h := Auth(secret, zap.NewNop())(RateLimit(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func(user, authz string) int {
		req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		req.Header.Set(HeaderUserID, user)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("guest-1", ""))
	assert.Equal(t, http.StatusTooManyRequests, send("guest-2", ""), "a new header id does not get a new bucket")

	valid := signed(t, jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()}, secret)
	assert.Equal(t, http.StatusOK, send("", "Bearer "+valid))
}

func TestCorrelationID(t *testing.T) {
	var got string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", got)
	assert.Equal(t, "abc", rr.Header().Get(HeaderCorrelationID))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get(HeaderCorrelationID))
	assert.Equal(t, rr.Header().Get(HeaderCorrelationID), got)
}

func TestRecover(t *testing.T) {
	h := CorrelationID(Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderCorrelationID, "cid-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "cid-1", body.CorrelationID)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("preflight from allowed origin", func(t *testing.T) {
		h := CORS([]string{"https://shop.example"})(next)
		req := httptest.NewRequest(http.MethodOptions, "/me/cart", nil)
		req.Header.Set("Origin", "https://shop.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "https://shop.example", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		h := CORS([]string{"https://shop.example"})(next)
		req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard reflects origin", func(t *testing.T) {
		h := CORS([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
