// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, code generation, JWT
// signing) from the domain logic. The auth service depends on it through the
// [TokenProvider]-shaped interface it declares itself.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures. Callers outside this package must not tell
// them apart in responses; they exist for logs and tests.
var (
	ErrTokenMalformed = errors.New("sec: token is malformed or has a bad signature")
	ErrTokenExpired   = errors.New("sec: token has expired")
)

// AuthClaims represents the payload embedded inside a session token.
//
// The identity reference and contact key travel in the token, so protected
// handlers never touch the credential store to authenticate a request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	IdentityID string `json:"iid"`
	Mobile     string `json:"mob"`
}

// TokenConfig is the process-wide signing configuration.
type TokenConfig struct {
	// Secret is the HMAC key. It must not be empty.
	Secret []byte

	// TTL is the validity window measured from issuance.
	TTL time.Duration

	// Issuer populates and is required on the 'iss' claim.
	Issuer string

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// TokenService handles generation and verification of HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService from an explicit configuration.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("sec: token secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("sec: token ttl must be positive, got %s", cfg.TTL)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    now,
	}, nil
}

// Issue signs a token for the identity and returns it with its expiry.
func (service *TokenService) Issue(identityID, mobile string) (string, time.Time, error) {
	issuedAt := service.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(service.ttl)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		IdentityID: identityID,
		Mobile:     mobile,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// VerifyToken checks the signature and validity window of a token string.
//
// It returns [ErrTokenExpired] for a well-signed token past its expiry and
// [ErrTokenMalformed] for everything else.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(service.now),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if !token.Valid || claims.IdentityID == "" || claims.Mobile == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// TTL returns the configured validity window.
func (service *TokenService) TTL() time.Duration {
	return service.ttl
}
