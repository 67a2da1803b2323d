package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/server/accounts"
	"github.com/dkurosov/authguard/internal/server/models"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyAccountRequest struct {
	OTP string `json:"otp"`
}

type forgottenPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	OTP             string `json:"otp"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type changePasswordRequest struct {
	OTP             string `json:"otp"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// profileView is the outward-facing credential; it never carries the
// password hash.
type profileView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

func newProfileView(c *models.Credential) profileView {
	return profileView{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Status:    string(c.Status),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	cred, err := s.accounts.Register(r.Context(), accounts.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, newProfileView(cred))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	pair, err := s.accounts.Login(r.Context(), accounts.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	var req verifyAccountRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.accounts.VerifyAccount(r.Context(), req.OTP); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "verified"})
}

func (s *Server) handleForgottenPassword(w http.ResponseWriter, r *http.Request) {
	var req forgottenPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.accounts.ForgottenPassword(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	// identical response whether or not the email is registered
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.accounts.ResetPassword(r.Context(), accounts.ResetPasswordRequest{
		Code:            req.OTP,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}
	pair, err := s.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	cred, err := s.accounts.Profile(r.Context(), subjectID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newProfileView(cred))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.accounts.UpdateProfile(r.Context(), subjectID(r.Context()), req.FirstName, req.LastName); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleRequestPasswordUpdate(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.RequestPasswordUpdate(r.Context(), subjectID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	err := s.accounts.ChangePassword(r.Context(), accounts.ChangePasswordRequest{
		CredentialID:    subjectID(r.Context()),
		Code:            req.OTP,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Logout(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Debug(r.Context(), "invalid request payload", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps sentinel errors to status codes and generic messages.
// Internal detail is logged, never echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrPasswordMismatch):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrEmailTaken):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrWrongCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrInvalidCode),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenSignature),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenInvalidated):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, common.ErrAccountNotVerified):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrAccountDisabled):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorInternal):
		status, msg = http.StatusInternalServerError, "internal error"
	case errors.Is(err, common.ErrorUnavailable):
		status, msg = http.StatusServiceUnavailable, "service unavailable"
	default:
		s.logger.Error(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, map[string]string{"error": msg})
}
