// Package server initializes and runs the profile server.
// It opens the configured user store, applies migrations, connects the media
// host and starts the HTTP API together with the gRPC health endpoint.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/media"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/profilekeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/profilekeeper/internal/server/http"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler *hs.Handler
	tokens  *auth.TokenService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	sameSite, err := config.ParseSameSite(c.CookieSameSite)
	if err != nil {
		return nil, err
	}

	uploadDir, err := filex.EnsureSubdDir(c.UploadTempDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:    c.AccessTokenSecret,
		RefreshSecret:   c.RefreshTokenSecret,
		AccessLifetime:  c.AccessTokenLifetime,
		RefreshLifetime: c.RefreshTokenLifetime,
	})
	if err != nil {
		return nil, err
	}

	uploader, err := media.NewS3Uploader(ctx, media.S3Config{
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("media init error: %w", err)
	}

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	us := services.NewUserService(rm.Users(), uploader, tokens, logger)

	cookies := hs.NewCookieManager(hs.CookieConfig{
		Secure:          c.CookieSecure,
		SameSite:        sameSite,
		Domain:          c.CookieDomain,
		AccessLifetime:  c.AccessTokenLifetime,
		RefreshLifetime: c.RefreshTokenLifetime,
	})

	h := hs.NewHandler(us, cookies, uploadDir, c.MaxUploadSize, logger)

	return &App{config: c, logger: logger, repos: rm, handler: h, tokens: tokens}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := hs.NewRouter(app.handler, app.tokens, app.logger)
	s := hs.NewServer(app.config.EndpointAddrHTTP, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	// ctx is already cancelled here
	if err := app.repos.Close(context.Background()); err != nil {
		app.logger.Error(context.Background(), "closing storage", "error", err)
	}

	app.logger.Info(context.Background(), "App stopped")
}
