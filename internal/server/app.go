// Package server initializes and runs the credential service. It wires the
// config, storage, token service, OTP engine, and mailer together, applies
// database migrations, and serves the REST API until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dkurosov/authguard/internal/logging"
	"github.com/dkurosov/authguard/internal/server/accounts"
	"github.com/dkurosov/authguard/internal/server/auth"
	"github.com/dkurosov/authguard/internal/server/config"
	"github.com/dkurosov/authguard/internal/server/httpapi"
	"github.com/dkurosov/authguard/internal/server/mail"
	"github.com/dkurosov/authguard/internal/server/otp"
	"github.com/dkurosov/authguard/internal/server/storage"
)

// sweepInterval is how often expired OTP codes and denylist rows are purged.
const sweepInterval = 10 * time.Minute

type App struct {
	config         *config.Config
	logger         logging.Logger
	store          *storage.Postgres
	accountService *accounts.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := c.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey),
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	engine, err := otp.NewEngine([]byte(c.TOTPSecret), c.OTPValidityDuration)
	if err != nil {
		return nil, err
	}

	var mailer mail.Mailer
	if c.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(c.SMTPHost, c.SMTPPort, c.SMTPUsername, c.SMTPPassword, c.MailFrom)
	} else {
		mailer = mail.NewLogMailer(logger)
	}

	svc := accounts.NewService(store.DB(), store, tokens, engine, mailer, logger)

	return &App{config: c, logger: logger, store: store, accountService: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.accountService, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSweeper periodically removes expired OTP codes and denylisted tokens.
func (app *App) startSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.accountService.SweepExpired(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.store.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migration error", "error", err)
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweeper(ctx)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "error closing storage", "error", err)
	}
}
