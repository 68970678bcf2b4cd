// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package auth implements farmer identity: sign-up, password login, SMS
// one-time code login and session token issuance.
//
// # Architecture
//
// The [Service] orchestrates repositories, the token issuer and the code
// dispatcher through interfaces declared in this package. It knows nothing
// about HTTP or SQL; [Handler] and the store_*.go files do.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	"github.com/taibuivan/krishimitra/internal/platform/ctxutil"
	"github.com/taibuivan/krishimitra/internal/platform/sec"
	"github.com/taibuivan/krishimitra/internal/platform/validate"
	"github.com/taibuivan/krishimitra/pkg/uuid"
)

// # Collaborators

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	// Issue returns a signed token for the identity and its expiry.
	Issue(identityID, mobile string) (string, time.Time, error)
}

// CodeDispatcher delivers a one-time code to a mobile number.
type CodeDispatcher interface {
	Send(ctx context.Context, mobile, code string) error
}

// invalidNumber is implemented by dispatcher errors reporting that the
// destination can never receive messages.
type invalidNumber interface {
	InvalidNumber() bool
}

// # Errors

var (
	ErrInvalidCredentials   = apperr.New(apperr.CodeInvalidCredentials, http.StatusBadRequest, "Invalid credentials")
	ErrInvalidOrExpiredCode = apperr.New(apperr.CodeInvalidOrExpiredCode, http.StatusBadRequest, "Invalid or expired OTP")
	ErrDuplicateIdentity    = apperr.Conflict("User already exists")
	ErrDeliveryFailed       = apperr.BadGateway(apperr.CodeDeliveryFailed, "Failed to send OTP. Please try again.")
	ErrInvalidMobileNumber  = validate.RequiredError("mobileNumber", "The mobile number cannot receive SMS")
	ErrPasswordDisabled     = validate.RequiredError("password", "Password login is disabled")
	ErrCodeDisabled         = validate.RequiredError("mobileNumber", "OTP login is disabled")
)

// # Service

// Options configures which strategies run and the one-time code policy.
type Options struct {
	PasswordEnabled bool
	CodeEnabled     bool

	// CodeTTL and CodeDigits default to [CodeTTL] and [CodeDigits].
	CodeTTL    time.Duration
	CodeDigits int

	// Now overrides the clock used for code expiry. Nil means time.Now.
	Now func() time.Time
}

// Service implements farmer authentication use cases.
type Service struct {
	identities IdentityRepository
	codes      CodeRepository
	tokens     TokenIssuer
	dispatcher CodeDispatcher
	options    Options
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	identities IdentityRepository,
	codes CodeRepository,
	tokens TokenIssuer,
	dispatcher CodeDispatcher,
	options Options,
) *Service {
	if options.CodeTTL <= 0 {
		options.CodeTTL = CodeTTL
	}
	if options.CodeDigits <= 0 {
		options.CodeDigits = CodeDigits
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Service{
		identities: identities,
		codes:      codes,
		tokens:     tokens,
		dispatcher: dispatcher,
		options:    options,
	}
}

// SignupInput holds the data required to enroll a farmer.
type SignupInput struct {
	Username string
	Email    string
	Mobile   string
	Password string
}

/*
Signup validates, hashes, and persists a new identity.

Returns:
  - error: a VALIDATION_ERROR before any storage access, or [ErrDuplicateIdentity]
    when the mobile number or email is already registered
*/
func (service *Service) Signup(ctx context.Context, input SignupInput) (*Identity, error) {
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)

	// 1. Validation
	validator := &validate.Validator{}
	validator.
		Required("mobileNumber", input.Mobile).
		Digits("mobileNumber", input.Mobile).
		MinLen("mobileNumber", input.Mobile, MinMobileLength).
		MaxLen("mobileNumber", input.Mobile, MaxMobileLength).
		Required("password", input.Password).
		MinLen("password", input.Password, MinPasswordLength).
		Custom("password", len(input.Password) > MaxPasswordBytes, "Must be at most 72 bytes").
		MaxLen("username", input.Username, MaxUsernameLength)
	if input.Email != "" {
		validator.Email("email", input.Email).MaxLen("email", input.Email, MaxEmailLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Uniqueness
	existing, err := service.resolveSignup(ctx, input.Mobile, input.Email)
	if err != nil {
		return nil, err
	}

	// 3. Security
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_signup_hash_failed: %w", err)
	}

	// 4. Persistence
	now := service.options.Now().UTC()
	identity := &Identity{
		ID:           uuid.New(),
		Mobile:       input.Mobile,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if existing != nil {
		return service.claim(ctx, existing, identity)
	}

	if err := service.identities.Create(ctx, identity); err != nil {
		// A concurrent signup can still win the race past the checks above.
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, ErrDuplicateIdentity.WithCause(err)
		}
		return nil, fmt.Errorf("auth_signup_create_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "identity_registered", slog.String("identity_id", identity.ID))
	return identity, nil
}

/*
resolveSignup checks the contact keys against existing identities.

It returns the passwordless identity left behind by the one-time code flow
when the mobile number belongs to one, or nil when the number is unused.
*/
func (service *Service) resolveSignup(ctx context.Context, mobile, email string) (*Identity, error) {
	existing, err := service.identities.FindByMobile(ctx, mobile)
	switch {
	case err == nil && existing.HasPassword():
		return nil, ErrDuplicateIdentity
	case err != nil && !apperr.HasCode(err, apperr.CodeNotFound):
		return nil, fmt.Errorf("auth_signup_lookup_failed: %w", err)
	case err != nil:
		existing = nil
	}

	if email == "" {
		return existing, nil
	}
	owner, err := service.identities.FindByEmail(ctx, email)
	if err == nil && (existing == nil || owner.ID != existing.ID) {
		return nil, ErrDuplicateIdentity
	}
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_signup_lookup_failed: %w", err)
	}
	return existing, nil
}

// claim sets a password and profile on an identity created by the code flow.
func (service *Service) claim(ctx context.Context, existing, profile *Identity) (*Identity, error) {
	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt

	claimed, err := service.identities.Claim(ctx, profile)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, ErrDuplicateIdentity.WithCause(err)
		}
		return nil, fmt.Errorf("auth_signup_claim_failed: %w", err)
	}
	// Another signup set a password first.
	if !claimed {
		return nil, ErrDuplicateIdentity
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "identity_claimed", slog.String("identity_id", profile.ID))
	return profile, nil
}

// # Authentication

// Login authenticates with an identifier (mobile number or email) and password.
func (service *Service) Login(ctx context.Context, identifier, password string) (*Session, error) {
	return service.Authenticate(ctx, PasswordCredential{Identifier: identifier, Password: password})
}

// VerifyCode consumes a one-time code and opens a session.
func (service *Service) VerifyCode(ctx context.Context, mobile, code string) (*Session, error) {
	return service.Authenticate(ctx, CodeCredential{Mobile: mobile, Code: code})
}

// Authenticate checks a credential of either kind and issues a session token.
func (service *Service) Authenticate(ctx context.Context, credential Credential) (*Session, error) {
	var (
		identity *Identity
		err      error
	)

	switch c := credential.(type) {
	case PasswordCredential:
		identity, err = service.checkPassword(ctx, c)
	case CodeCredential:
		identity, err = service.checkCode(ctx, c)
	default:
		return nil, fmt.Errorf("auth_unknown_credential: %T", credential)
	}
	if err != nil {
		return nil, err
	}

	return service.issueSession(identity)
}

/*
checkPassword resolves the identifier and compares the bcrypt hash.

Unknown identifier, identity without a password and wrong password all
return [ErrInvalidCredentials] after comparable bcrypt work.
*/
func (service *Service) checkPassword(ctx context.Context, credential PasswordCredential) (*Identity, error) {
	if !service.options.PasswordEnabled {
		return nil, ErrPasswordDisabled
	}

	identifier := strings.TrimSpace(credential.Identifier)
	if err := new(validate.Validator).
		Required("identifier", identifier).
		Required("password", credential.Password).
		Err(); err != nil {
		return nil, err
	}

	identity, err := service.lookup(ctx, identifier)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			sec.BurnPasswordCheck(credential.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth_login_lookup_failed: %w", err)
	}

	if !identity.HasPassword() {
		sec.BurnPasswordCheck(credential.Password)
		return nil, ErrInvalidCredentials
	}
	if !sec.CheckPasswordHash(credential.Password, identity.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return identity, nil
}

// lookup tries the identifier as a mobile number first, then as an email.
func (service *Service) lookup(ctx context.Context, identifier string) (*Identity, error) {
	identity, err := service.identities.FindByMobile(ctx, identifier)
	if err == nil || !apperr.HasCode(err, apperr.CodeNotFound) {
		return identity, err
	}
	if !strings.Contains(identifier, "@") {
		return nil, err
	}
	return service.identities.FindByEmail(ctx, strings.ToLower(identifier))
}

func (service *Service) checkCode(ctx context.Context, credential CodeCredential) (*Identity, error) {
	if !service.options.CodeEnabled {
		return nil, ErrCodeDisabled
	}

	mobile := strings.TrimSpace(credential.Mobile)
	code := strings.TrimSpace(credential.Code)
	if err := new(validate.Validator).
		Required("mobileNumber", mobile).
		Required("otp", code).
		Digits("otp", code).
		Err(); err != nil {
		return nil, err
	}

	consumed, err := service.codes.Consume(ctx, mobile, code, service.options.Now())
	if err != nil {
		return nil, fmt.Errorf("auth_verify_consume_failed: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidOrExpiredCode
	}

	identity, err := service.identities.FindByMobile(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("auth_verify_lookup_failed: %w", err)
	}
	return identity, nil
}

func (service *Service) issueSession(identity *Identity) (*Session, error) {
	token, expiresAt, err := service.tokens.Issue(identity.ID, identity.Mobile)
	if err != nil {
		return nil, fmt.Errorf("auth_token_issue_failed: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// # One-Time Codes

/*
RequestCode generates a code for the mobile number, stores it and sends it.

The code is stored before dispatch, so a delivery failure still leaves a
verifiable code behind; the client may retry.

Returns:
  - error: VALIDATION_ERROR for a bad or undeliverable number,
    [ErrDeliveryFailed] when the provider is unreachable
*/
func (service *Service) RequestCode(ctx context.Context, mobile string) error {
	if !service.options.CodeEnabled {
		return ErrCodeDisabled
	}

	mobile = strings.TrimSpace(mobile)
	if err := new(validate.Validator).
		Required("mobileNumber", mobile).
		Digits("mobileNumber", mobile).
		MinLen("mobileNumber", mobile, MinMobileLength).
		MaxLen("mobileNumber", mobile, MaxMobileLength).
		Err(); err != nil {
		return err
	}

	code, err := sec.GenerateNumericCode(service.options.CodeDigits)
	if err != nil {
		return fmt.Errorf("auth_code_generate_failed: %w", err)
	}

	now := service.options.Now().UTC()
	if err := service.identities.Ensure(ctx, &Identity{
		ID:        uuid.New(),
		Mobile:    mobile,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("auth_code_ensure_identity_failed: %w", err)
	}

	if err := service.codes.Save(ctx, mobile, code, now.Add(service.options.CodeTTL)); err != nil {
		return fmt.Errorf("auth_code_save_failed: %w", err)
	}

	if err := service.dispatcher.Send(ctx, mobile, code); err != nil {
		var rejected invalidNumber
		if errors.As(err, &rejected) && rejected.InvalidNumber() {
			return ErrInvalidMobileNumber.WithCause(err)
		}
		return ErrDeliveryFailed.WithCause(err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "login_code_sent")
	return nil
}

// # Profile

// Me returns the identity behind an authenticated session.
func (service *Service) Me(ctx context.Context, identityID string) (*Identity, error) {
	if !uuid.Valid(identityID) {
		return nil, apperr.NotFound("Identity")
	}

	identity, err := service.identities.FindByID(ctx, identityID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Identity")
		}
		return nil, fmt.Errorf("auth_me_lookup_failed: %w", err)
	}
	return identity, nil
}
