// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/krishimitra/internal/platform/constants"
	requestutil "github.com/taibuivan/krishimitra/internal/platform/request"
	"github.com/taibuivan/krishimitra/internal/platform/respond"
)

// Handler implements authentication HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the public authentication routes.
// Tokens are never inspected here, so a stale token cannot block a new login.
//
// # Endpoints
//   - POST /signup : Creates an identity with a password.
//   - POST /login  : Password login, or sends a one-time code when no password is given.
//   - POST /verify : Exchanges a one-time code for a session token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/verify", handler.verify)

	return router
}

// # Payloads

type signupRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password"`
}

// loginRequest accepts the identifier under any of the names clients send.
type loginRequest struct {
	Identifier   string `json:"identifier"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

func (body loginRequest) identifier() string {
	for _, candidate := range []string{body.Identifier, body.MobileNumber, body.Email} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type verifyRequest struct {
	MobileNumber string `json:"mobileNumber"`
	OTP          string `json:"otp"`
}

type sessionResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// # Handlers

func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var body signupRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: body.Username,
		Email:    body.Email,
		Mobile:   body.MobileNumber,
		Password: body.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusCreated, "User registered successfully")
}

/*
login handles POST /api/login.

With a password it answers 200 with a token. Without one it treats the
identifier as a mobile number, sends a one-time code and answers 200 with no
token; the client then calls /verify.
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var body loginRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if body.Password == "" {
		if err := handler.authService.RequestCode(request.Context(), body.identifier()); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Message(writer, http.StatusOK, "OTP sent successfully")
		return
	}

	session, err := handler.authService.Login(request.Context(), body.identifier(), body.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var body verifyRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.VerifyCode(request.Context(), body.MobileNumber, body.OTP)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{
		Success:   true,
		Message:   "OTP verified successfully",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Me handles GET /api/me. It must sit behind the bearer token middleware.
func (handler *Handler) Me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.Me(request.Context(), claims.IdentityID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		constants.FieldSuccess: true,
		"identity":             identity,
	})
}
