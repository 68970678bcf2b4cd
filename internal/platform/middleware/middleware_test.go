// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	"github.com/taibuivan/krishimitra/internal/platform/ctxutil"
	"github.com/taibuivan/krishimitra/internal/platform/middleware"
	"github.com/taibuivan/krishimitra/internal/platform/respond"
	"github.com/taibuivan/krishimitra/internal/platform/sec"
)

// stubVerifier accepts exactly one token value.
type stubVerifier struct {
	valid string
	err   error
}

func (s stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token == s.valid {
		return &sec.AuthClaims{IdentityID: "identity-1", Mobile: "9876543210"}, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, sec.ErrTokenMalformed
}

func protected(verifier middleware.TokenVerifier) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ctxutil.GetAuthUser(r.Context())
		respond.OK(w, map[string]string{"identity": claims.IdentityID})
	})
	return middleware.Authenticate(verifier)(middleware.RequireAuth(final))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var body respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

/*
TestAuthenticate_StatusMapping checks the 401/403 split on protected routes.
*/
func TestAuthenticate_StatusMapping(t *testing.T) {
	handler := protected(stubVerifier{valid: "good"})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"no_header", "", http.StatusUnauthorized, apperr.CodeMissingToken},
		{"bearer_without_token", "Bearer ", http.StatusUnauthorized, apperr.CodeMissingToken},
		{"wrong_scheme", "Basic abc", http.StatusForbidden, apperr.CodeInvalidToken},
		{"bad_token", "Bearer nope", http.StatusForbidden, apperr.CodeInvalidToken},
		{"lowercase_scheme", "bearer good", http.StatusOK, ""},
		{"valid", "Bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/suggest-crops", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				body := decodeError(t, rec)
				assert.False(t, body.Success)
				assert.Equal(t, tt.wantCode, body.Code)
			}
		})
	}
}

/*
TestAuthenticate_ExpiredLooksLikeInvalid ensures expiry is not revealed to clients.
*/
func TestAuthenticate_ExpiredLooksLikeInvalid(t *testing.T) {
	handler := protected(stubVerifier{valid: "good", err: sec.ErrTokenExpired})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Invalid or expired token", body.Message)
}

/*
TestAuthenticate_AnonymousPassThrough lets public routes run without claims.
*/
func TestAuthenticate_AnonymousPassThrough(t *testing.T) {
	called := false
	handler := middleware.Authenticate(stubVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, ctxutil.GetAuthUser(r.Context()))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

/*
TestRequestID_ReusesOrGenerates covers both header paths.
*/
func TestRequestID_ReusesOrGenerates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc-123", seen)
}

/*
TestStructuredLogger_RecordsIdentity checks the finished-request log line.
*/
func TestStructuredLogger_RecordsIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	chain := middleware.StructuredLogger(logger)(protected(stubVerifier{valid: "good"}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	chain.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request_finished", entry["msg"])
	assert.Equal(t, "identity-1", entry["user_id"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
}

/*
TestPanicRecovery_Returns500 keeps the process alive on handler panics.
*/
func TestPanicRecovery_Returns500(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperr.CodeInternal, decodeError(t, rec).Code)
}

/*
TestCORS_AllowedOrigin checks preflight handling for the configured origin.
*/
func TestCORS_AllowedOrigin(t *testing.T) {
	handler := middleware.CORS([]string{"https://krishi-mitra-sage.vercel.app"}, false)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://krishi-mitra-sage.vercel.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://krishi-mitra-sage.vercel.app", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestRealIP prefers proxy headers over the socket address.
*/
func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(req))
}
