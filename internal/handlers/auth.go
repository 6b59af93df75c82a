package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/seekershq/seekers-backend/internal/middleware"
	"github.com/seekershq/seekers-backend/internal/models"
	"github.com/seekershq/seekers-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type SignupRequest struct {
	AccountType string `json:"account_type"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	City        string `json:"city,omitempty"`
	Password    string `json:"password"`
	AdultPolicy *bool  `json:"adult_policy,omitempty"`
}

type OtpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp,omitempty"`
	NewPassword string `json:"new_password"`
	OldPassword string `json:"old_password,omitempty"`
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".") && !strings.ContainsAny(email, " \t")
}

// Signup starts registration: a pending signup row plus an emailed OTP.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.AccountType == "" {
		respondValidation(w, "Account type, display name, email and password are required")
		return
	}
	if !validEmail(req.Email) {
		respondValidation(w, "Invalid email address")
		return
	}
	if len(req.Password) < 8 {
		respondValidation(w, "Password must be at least 8 characters")
		return
	}
	if !models.ValidRole(req.AccountType) {
		respondValidation(w, "Invalid account type")
		return
	}

	email, err := h.auth.Signup(r.Context(), services.SignupInput{
		AccountType: req.AccountType,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		City:        req.City,
		Password:    req.Password,
		AdultPolicy: req.AdultPolicy,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, services.MsgOTPSentSuccess, envelope{"email": email})
}

// VerifyOtp completes registration and logs the new account in.
func (h *AuthHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req OtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		respondValidation(w, "Email and OTP are required")
		return
	}

	res, err := h.auth.VerifyOtp(r.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, services.MsgEmailVerifiedSuccess, envelope{
		"token": res.Token,
		"user":  res.User,
	})
}

// ResendOtp re-sends the signup verification code.
func (h *AuthHandler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondValidation(w, "Email is required")
		return
	}

	email, err := h.auth.ResendOtp(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, services.MsgOTPSentSuccess, envelope{"email": email})
}

// Login verifies credentials and sends the login OTP.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondValidation(w, "Email and password are required")
		return
	}

	msg, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, msg, nil)
}

// VerifyLoginOtp completes login and issues the session token.
func (h *AuthHandler) VerifyLoginOtp(w http.ResponseWriter, r *http.Request) {
	var req OtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		respondValidation(w, "Email and OTP are required")
		return
	}

	res, err := h.auth.VerifyLoginOtp(r.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, services.MsgLoginSuccess, envelope{
		"token": res.Token,
		"user":  res.User,
	})
}

// ResendLoginOtp re-sends the login code.
func (h *AuthHandler) ResendLoginOtp(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondValidation(w, "Email is required")
		return
	}

	email, err := h.auth.ResendLoginOtp(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, services.MsgLoginOTPSent, envelope{"email": email})
}

// ForgotPassword sends a password-reset OTP.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondValidation(w, "Email is required")
		return
	}

	email, err := h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, services.MsgPasswordResetOTPSent, envelope{"email": email})
}

// ResetPassword changes the password via OTP or via the old password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.NewPassword == "" {
		respondValidation(w, "Email and new password are required")
		return
	}
	if len(req.NewPassword) < 8 {
		respondValidation(w, "Password must be at least 8 characters")
		return
	}

	msg, err := h.auth.ResetPassword(r.Context(), services.ResetPasswordInput{
		Email:       req.Email,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, msg, nil)
}

// Logout acknowledges the client-side token discard.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.auth.Logout(), nil)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, envelope{"success": false, "message": "Authentication required. Please login."})
		return
	}

	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "", envelope{"user": user})
}
