// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	"github.com/taibuivan/krishimitra/internal/platform/constants"
	"github.com/taibuivan/krishimitra/internal/platform/ctxutil"
	"github.com/taibuivan/krishimitra/internal/platform/respond"
	"github.com/taibuivan/krishimitra/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// Declaring it here keeps the middleware independent of [sec.TokenService],
// so tests can swap in a stub.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Client-facing messages. Expired, tampered and malformed tokens all share
// the same answer.
const (
	msgMissingToken = "Access denied. No token provided."
	msgInvalidToken = "Invalid or expired token"
)

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, verify the JWT via [TokenVerifier]; any failure is a 403.
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))

			// 1. Anonymous access
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Format validation
			scheme, tokenStr, _ := strings.Cut(authHeader, " ")
			tokenStr = strings.TrimSpace(tokenStr)
			if !strings.EqualFold(scheme, constants.BearerScheme) {
				respond.Error(writer, request, apperr.Forbidden(msgInvalidToken))
				return
			}
			if tokenStr == "" {
				respond.Error(writer, request, apperr.Unauthorized(msgMissingToken))
				return
			}

			// 3. Token verification
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				reason := "malformed"
				if errors.Is(err, sec.ErrTokenExpired) {
					reason = "expired"
				}
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "token_rejected",
					slog.String("reason", reason),
				)
				respond.Error(writer, request, apperr.Forbidden(msgInvalidToken))
				return
			}

			// 4. Context injection
			recordIdentity(request.Context(), claims.IdentityID)
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that carry no token.
//
// It must be registered after [Authenticate], which has already rejected
// invalid tokens with 403, so anything reaching here without claims is 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized(msgMissingToken))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
