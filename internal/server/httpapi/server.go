// Package httpapi exposes the credential lifecycle over REST. It is a thin
// translation layer: decode the request, call the accounts service, map the
// sentinel error to a status code. No business rules live here.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dkurosov/authguard/internal/logging"
	"github.com/dkurosov/authguard/internal/server/accounts"
	"github.com/dkurosov/authguard/internal/server/auth"
	"github.com/dkurosov/authguard/internal/server/models"
)

// AccountService is the slice of the accounts service the transport needs.
type AccountService interface {
	Register(ctx context.Context, req accounts.RegisterRequest) (*models.Credential, error)
	Login(ctx context.Context, req accounts.LoginRequest) (*accounts.TokenPair, error)
	VerifyAccount(ctx context.Context, code string) error
	ForgottenPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req accounts.ResetPasswordRequest) error
	RequestPasswordUpdate(ctx context.Context, credentialID string) error
	ChangePassword(ctx context.Context, req accounts.ChangePasswordRequest) error
	Refresh(ctx context.Context, refreshToken string) (*accounts.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	CheckAccess(ctx context.Context, accessToken string) (*auth.Claims, error)
	Profile(ctx context.Context, credentialID string) (*models.Credential, error)
	UpdateProfile(ctx context.Context, credentialID, firstName, lastName string) error
}

type Server struct {
	address  string
	accounts AccountService
	logger   logging.Logger
}

func NewServer(address string, svc AccountService, logger logging.Logger) *Server {
	return &Server{
		address:  address,
		accounts: svc,
		logger:   logger.With("module", "http_server"),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/verify", s.handleVerifyAccount)
	mux.HandleFunc("POST /api/password/forgot", s.handleForgottenPassword)
	mux.HandleFunc("POST /api/password/reset", s.handleResetPassword)
	mux.HandleFunc("POST /api/token/refresh", s.handleRefresh)

	mux.Handle("GET /api/profile", s.authenticate(s.handleProfile))
	mux.Handle("PATCH /api/profile", s.authenticate(s.handleUpdateProfile))
	mux.Handle("POST /api/password/change/request", s.authenticate(s.handleRequestPasswordUpdate))
	mux.Handle("POST /api/password/change", s.authenticate(s.handleChangePassword))
	mux.Handle("POST /api/logout", s.authenticate(s.handleLogout))

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
