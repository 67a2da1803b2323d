// Package cli implements the interactive authguard client. It drives the REST
// API through a small read–eval–print loop.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dkurosov/authguard/internal/client/api"
	"github.com/dkurosov/authguard/internal/client/config"
)

type App struct {
	config *config.Config
	api    *api.Client
	email  string
	reader *bufio.Reader
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerAddr),
		reader: bufio.NewReader(os.Stdin),
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.api.IsLoggedIn()
}
