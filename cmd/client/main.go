package main

import (
	"context"

	"github.com/dkurosov/authguard/internal/client/cli"
	"github.com/dkurosov/authguard/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
