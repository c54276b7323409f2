// Package server wires configuration, key material, the identity store and
// both network boundaries into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/chatserver/internal/cryptox"
	"github.com/dmitrijs2005/chatserver/internal/dbx"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/config"
	"github.com/dmitrijs2005/chatserver/internal/server/httpapi"
	"github.com/dmitrijs2005/chatserver/internal/server/keystore"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/users"
	"github.com/dmitrijs2005/chatserver/internal/server/services"

	gs "github.com/dmitrijs2005/chatserver/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	verifier    *auth.Verifier
}

// NewApp loads key material and opens the identity store. A missing or
// unusable key pair is fatal.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	src, err := keystore.FromConfig(c)
	if err != nil {
		return nil, fmt.Errorf("key source: %w", err)
	}

	keys, err := keystore.LoadKeyPair(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}

	issuer, err := auth.NewIssuer(keys.Private, auth.WithIssuerName(c.TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("issuer init error: %w", err)
	}

	var vopts []auth.VerifierOption
	if c.TokenIssuer != "" {
		vopts = append(vopts, auth.WithExpectedIssuer(c.TokenIssuer))
	}
	verifier, err := auth.NewVerifier(keys.Public, vopts...)
	if err != nil {
		return nil, fmt.Errorf("verifier init error: %w", err)
	}

	app := &App{config: c, logger: logger, verifier: verifier}

	var repo users.Repository
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, identities are kept in memory")
		repo = users.NewMemoryRepository()
	} else {
		db, err := dbx.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		app.db = db
		repo = rm.Users(db)
	}

	pool := cryptox.NewPool(cryptox.NewHasher(cryptox.DefaultParams), c.HashWorkers)
	app.userService = services.NewUserService(repo, pool, issuer, c.AccessTokenValidityDuration, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.verifier)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.handler(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) handler() http.Handler {
	return httpapi.New(app.userService, app.verifier, app.logger).Routes()
}

// Run serves until ctx is cancelled, a termination signal arrives or either
// server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close", "error", err)
		}
	}

	app.logger.Info(context.Background(), "App stopped")
}
