package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/usecase"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"
	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// Register handles doctor and patient sign-up
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	res, err := h.authUsecase.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			response.Conflict(w, "User already exists with this email/phone")
		case errors.Is(err, usecase.ErrIdentifierRequired),
			errors.Is(err, usecase.ErrInvalidPhoneNumber),
			errors.Is(err, usecase.ErrAuthMethodUnavailable):
			response.BadRequest(w, capitalize(err.Error()))
		default:
			response.InternalServerError(w, "Failed to register user")
		}
		return
	}

	response.Success(w, http.StatusCreated, res.Message, res)
}

// Verify handles OTP verification
// @Summary Verify account with OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyRequest true "Verify Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	res, err := h.authUsecase.Verify(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidOTP) {
			response.BadRequest(w, "Invalid or expired OTP")
			return
		}
		response.InternalServerError(w, "Failed to verify account")
		return
	}

	response.Success(w, http.StatusOK, "Account verified successfully", res)
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendOTPRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	message, err := h.authUsecase.ResendOTP(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalServerError(w, "Failed to resend OTP")
		return
	}

	response.Success(w, http.StatusOK, message, nil)
}

// Login handles user login
// @Summary Login with email or phone
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		var statusErr *usecase.AccountStatusError
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid credentials")
		case errors.As(err, &statusErr):
			response.Unauthorized(w, statusErr.Error())
		case errors.Is(err, usecase.ErrEmailNotVerified):
			response.Unauthorized(w, "Email not verified")
		case errors.Is(err, usecase.ErrPhoneNotVerified):
			response.Unauthorized(w, "Phone not verified")
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// RefreshToken rotates the access and refresh tokens
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrUserNotFound):
			response.Unauthorized(w, "Invalid refresh token")
		case errors.Is(err, usecase.ErrTokenRevoked):
			response.Unauthorized(w, "Refresh token has been revoked")
		default:
			response.InternalServerError(w, "Failed to refresh token")
		}
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

func (h *AuthHandler) Methods(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Authentication methods retrieved successfully", h.authUsecase.Methods(r.Context()))
}

// ForgotPassword answers the same way whether or not the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.ForgotPassword(r.Context(), &req); err != nil {
		response.InternalServerError(w, "Failed to process password reset")
		return
	}

	response.Success(w, http.StatusOK, "If the account exists, a password reset code has been sent", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	if err := h.authUsecase.ResetPassword(r.Context(), &req); err != nil {
		if errors.Is(err, usecase.ErrInvalidResetToken) {
			response.BadRequest(w, "Invalid or expired reset token")
			return
		}
		response.InternalServerError(w, "Failed to reset password")
		return
	}

	response.Success(w, http.StatusOK, "Password reset successfully", nil)
}

// Logout revokes the current access token and, when given, the refresh token
// @Summary Logout user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// the body is optional
	var req dto.LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.authUsecase.Logout(r.Context(), &req); err != nil {
		commonError(w, err, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// GetCurrentUser handles getting current user info
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUsecase.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		commonError(w, err, "Failed to get user")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}
