// Package accounts implements the credential lifecycle: sign-up, login,
// OTP-based verification, password reset/change, token refresh, and logout.
// It is the only package with business rules; hashing, code generation, and
// token signing are delegated to passwords, otp, and auth.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/dbx"
	"github.com/dkurosov/authguard/internal/logging"
	"github.com/dkurosov/authguard/internal/server/auth"
	"github.com/dkurosov/authguard/internal/server/mail"
	"github.com/dkurosov/authguard/internal/server/models"
	"github.com/dkurosov/authguard/internal/server/otp"
	"github.com/dkurosov/authguard/internal/server/passwords"
	"github.com/dkurosov/authguard/internal/server/storage"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a longer-lived refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service orchestrates the credential lifecycle over the repositories, the
// token service, the OTP engine, and the mail collaborator.
type Service struct {
	db     *sql.DB
	repos  storage.Repos
	tokens *auth.TokenService
	otp    *otp.Engine
	mailer mail.Mailer
	logger logging.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, repos storage.Repos, tokens *auth.TokenService, engine *otp.Engine, mailer mail.Mailer, logger logging.Logger) *Service {
	return &Service{
		db:     db,
		repos:  repos,
		tokens: tokens,
		otp:    engine,
		mailer: mailer,
		logger: logger.With("module", "accounts"),
		now:    time.Now,
	}
}

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a credential in inactive status and dispatches an
// account-verification code. No session token is returned: the account must
// be verified before it can log in. A duplicate email fails with
// common.ErrEmailTaken; the uniqueness check and the insert are one atomic
// statement, so concurrent sign-ups cannot race past each other.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Credential, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, common.ErrValidation
	}

	hash, err := passwords.Hash(req.Password)
	if err != nil {
		if errors.Is(err, common.ErrHashingFailed) {
			return nil, common.ErrValidation
		}
		return nil, common.ErrorInternal
	}

	cred := &models.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Status:       models.StatusInactive,
	}

	inserted, err := s.repos.Credentials(s.db).InsertIfAbsent(ctx, cred)
	if err != nil {
		s.logger.Error(ctx, "credential insert failed", "error", err)
		return nil, common.ErrorUnavailable
	}
	if !inserted {
		return nil, common.ErrEmailTaken
	}

	// fire-and-forget: a failed dispatch is logged, the account stays
	if err := s.issueCode(ctx, cred, models.PurposeAccountVerification); err != nil {
		return nil, err
	}
	return cred, nil
}

type LoginRequest struct {
	Email    string
	Password string
}

// Login verifies the password and mints a token pair. An unknown email and a
// wrong password are indistinguishable to the caller; an unverified account
// is rejected with its own condition so the client can prompt for the code.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	cred, err := s.repos.Credentials(s.db).FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a comparison so unknown emails cost as much as
			// wrong passwords
			_, _ = passwords.Verify(req.Password, passwords.DummyHash)
			return nil, common.ErrWrongCredentials
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}

	ok, err := passwords.Verify(req.Password, cred.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored hash unreadable", "credential_id", cred.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrWrongCredentials
	}

	if err := statusGate(cred.Status); err != nil {
		return nil, err
	}
	return s.issuePair(cred)
}

// VerifyAccount redeems an account-verification code: the credential is
// located by its outstanding code, the status transitions to active, and the
// code is deleted in the same transaction so it cannot be replayed. Every
// failure mode collapses to common.ErrInvalidCode.
func (s *Service) VerifyAccount(ctx context.Context, code string) error {
	rec, err := s.findRedeemable(ctx, code, models.PurposeAccountVerification)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Credentials(tx).UpdateStatus(ctx, rec.CredentialID, models.StatusActive); err != nil {
			return err
		}
		return s.repos.OTPCodes(tx).Delete(ctx, rec.CredentialID, rec.Purpose)
	})
	if err != nil {
		s.logger.Error(ctx, "account activation failed", "credential_id", rec.CredentialID, "error", err)
		return common.ErrorUnavailable
	}
	return nil
}

// ForgottenPassword issues a password-reset code when the email is
// registered. The outcome is identical either way, so the endpoint cannot be
// used to enumerate accounts.
func (s *Service) ForgottenPassword(ctx context.Context, email string) error {
	cred, err := s.repos.Credentials(s.db).FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return common.ErrorUnavailable
	}
	return s.issueCode(ctx, cred, models.PurposePasswordReset)
}

type ResetPasswordRequest struct {
	Code            string
	NewPassword     string
	ConfirmPassword string
}

// ResetPassword redeems a password-reset code and stores the new password
// hash. Code deletion and the password update share one transaction.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return common.ErrPasswordMismatch
	}

	rec, err := s.findRedeemable(ctx, req.Code, models.PurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := passwords.Hash(req.NewPassword)
	if err != nil {
		if errors.Is(err, common.ErrHashingFailed) {
			return common.ErrValidation
		}
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Credentials(tx).UpdatePassword(ctx, rec.CredentialID, hash); err != nil {
			return err
		}
		return s.repos.OTPCodes(tx).Delete(ctx, rec.CredentialID, rec.Purpose)
	})
	if err != nil {
		s.logger.Error(ctx, "password reset failed", "credential_id", rec.CredentialID, "error", err)
		return common.ErrorUnavailable
	}
	return nil
}

// RequestPasswordUpdate issues a password-update code to an authenticated
// account's own email.
func (s *Service) RequestPasswordUpdate(ctx context.Context, credentialID string) error {
	cred, err := s.repos.Credentials(s.db).FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return common.ErrorUnavailable
	}
	return s.issueCode(ctx, cred, models.PurposePasswordUpdate)
}

type ChangePasswordRequest struct {
	CredentialID    string
	Code            string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword updates an authenticated account's password after checking
// the current password and redeeming a password-update code bound to the
// same credential.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return common.ErrPasswordMismatch
	}

	cred, err := s.repos.Credentials(s.db).FindByID(ctx, req.CredentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return common.ErrorUnavailable
	}

	ok, err := passwords.Verify(req.CurrentPassword, cred.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored hash unreadable", "credential_id", cred.ID, "error", err)
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrWrongCredentials
	}

	rec, err := s.findRedeemable(ctx, req.Code, models.PurposePasswordUpdate)
	if err != nil {
		return err
	}
	if rec.CredentialID != cred.ID {
		return common.ErrInvalidCode
	}

	hash, err := passwords.Hash(req.NewPassword)
	if err != nil {
		if errors.Is(err, common.ErrHashingFailed) {
			return common.ErrValidation
		}
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Credentials(tx).UpdatePassword(ctx, cred.ID, hash); err != nil {
			return err
		}
		return s.repos.OTPCodes(tx).Delete(ctx, cred.ID, rec.Purpose)
	})
	if err != nil {
		s.logger.Error(ctx, "password change failed", "credential_id", cred.ID, "error", err)
		return common.ErrorUnavailable
	}
	return nil
}

// Refresh validates a refresh token, denylists it, and mints a fresh pair
// for the same subject. The credential must still exist and be active.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	now := s.now()

	claims, err := s.tokens.Validate(refreshToken, auth.KindRefresh, now)
	if err != nil {
		return nil, err
	}

	denied, err := s.repos.Denylist(s.db).Contains(ctx, refreshToken)
	if err != nil {
		s.logger.Error(ctx, "denylist lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}
	if denied {
		return nil, common.ErrTokenInvalidated
	}

	cred, err := s.repos.Credentials(s.db).FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}
	if err := statusGate(cred.Status); err != nil {
		return nil, err
	}

	// rotation: the used refresh token is dead from here on
	if err := s.repos.Denylist(s.db).Add(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		s.logger.Error(ctx, "denylist insert failed", "error", err)
		return nil, common.ErrorUnavailable
	}
	return s.issuePair(cred)
}

// Logout denylists the access token until its natural expiry.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.Validate(accessToken, auth.KindAccess, s.now())
	if err != nil {
		return err
	}
	if err := s.repos.Denylist(s.db).Add(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		s.logger.Error(ctx, "denylist insert failed", "error", err)
		return common.ErrorUnavailable
	}
	return nil
}

// CheckAccess validates an access token and consults the denylist. It is the
// authentication step for protected endpoints.
func (s *Service) CheckAccess(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.tokens.Validate(accessToken, auth.KindAccess, s.now())
	if err != nil {
		return nil, err
	}
	denied, err := s.repos.Denylist(s.db).Contains(ctx, accessToken)
	if err != nil {
		s.logger.Error(ctx, "denylist lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}
	if denied {
		return nil, common.ErrTokenInvalidated
	}
	return claims, nil
}

// Profile returns the credential for an authenticated subject. Callers build
// outward views from it; the password hash must never be serialized.
func (s *Service) Profile(ctx context.Context, credentialID string) (*models.Credential, error) {
	cred, err := s.repos.Credentials(s.db).FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}
	return cred, nil
}

// UpdateProfile changes the account's display names.
func (s *Service) UpdateProfile(ctx context.Context, credentialID, firstName, lastName string) error {
	err := s.repos.Credentials(s.db).UpdateProfile(ctx, credentialID,
		strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "profile update failed", "error", err)
		return common.ErrorUnavailable
	}
	return nil
}

// SweepExpired removes expired one-time codes and denylist entries. Run
// periodically; both tables stay small without it, just slower.
func (s *Service) SweepExpired(ctx context.Context) {
	now := s.now()
	if _, err := s.repos.OTPCodes(s.db).DeleteExpired(ctx, now); err != nil {
		s.logger.Warn(ctx, "otp code sweep failed", "error", err)
	}
	if _, err := s.repos.Denylist(s.db).DeleteExpired(ctx, now); err != nil {
		s.logger.Warn(ctx, "denylist sweep failed", "error", err)
	}
}

// NormalizeEmail lowercases and trims an address so each mailbox maps to at
// most one credential.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func statusGate(status models.Status) error {
	switch status {
	case models.StatusActive:
		return nil
	case models.StatusInactive:
		return common.ErrAccountNotVerified
	default:
		return common.ErrAccountDisabled
	}
}

// issueCode generates the credential's code for the current window, stores
// it as the single outstanding code for the purpose, and dispatches it.
// Dispatch failure is logged but does not fail the operation.
func (s *Service) issueCode(ctx context.Context, cred *models.Credential, purpose models.OTPPurpose) error {
	now := s.now()
	rec := &models.OTPCode{
		CredentialID: cred.ID,
		Purpose:      purpose,
		Code:         s.otp.Generate(cred.ID, now),
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.otp.Window()),
	}

	if err := s.repos.OTPCodes(s.db).Upsert(ctx, rec); err != nil {
		s.logger.Error(ctx, "otp code store failed", "credential_id", cred.ID, "error", err)
		return common.ErrorUnavailable
	}

	if err := s.mailer.SendCode(ctx, cred.Email, purpose, rec.Code); err != nil {
		s.logger.Error(ctx, "otp code dispatch failed", "credential_id", cred.ID, "purpose", purpose, "error", err)
	}
	return nil
}

// findRedeemable locates an outstanding code and enforces its validity
// window [issued, issued+window). Unknown, mismatched, and expired codes are
// indistinguishable to the caller.
func (s *Service) findRedeemable(ctx context.Context, code string, purpose models.OTPPurpose) (*models.OTPCode, error) {
	if !otp.WellFormed(code) {
		return nil, common.ErrInvalidCode
	}

	rec, err := s.repos.OTPCodes(s.db).FindByCode(ctx, code, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCode
		}
		s.logger.Error(ctx, "otp code lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}

	if !otp.Matches(code, rec.Code) {
		return nil, common.ErrInvalidCode
	}

	now := s.now()
	if now.Before(rec.IssuedAt) || !now.Before(rec.ExpiresAt) {
		return nil, common.ErrInvalidCode
	}
	return rec, nil
}

func (s *Service) issuePair(cred *models.Credential) (*TokenPair, error) {
	now := s.now()

	access, err := s.tokens.Issue(cred.ID, cred.Email, auth.KindAccess, now)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.tokens.Issue(cred.ID, cred.Email, auth.KindRefresh, now)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
