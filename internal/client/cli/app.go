package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/config"
	"github.com/dmitrijs2005/profilekeeper/internal/client/services"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	db          *sql.DB
	reader      *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.OpenDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(apiClient, db)

	return &App{config: c, authService: as, db: db, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	printlnFn("profilekeeper CLI (type 'help' for commands)")
	if err := a.authService.Ping(ctx); err != nil {
		printlnFn("Warning: server is not reachable at", a.config.ServerURL)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	name, err := a.authService.CurrentUsername(context.Background())
	return err == nil && name != ""
}

func (a *App) status() string {
	name, err := a.authService.CurrentUsername(context.Background())
	if err != nil || name == "" {
		return "guest"
	}
	return name
}
