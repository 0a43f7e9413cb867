package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/devkral/secretgraph/cmd/app/commands"
	"github.com/devkral/secretgraph/internal/app"
	"github.com/devkral/secretgraph/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and the periodic sweeper",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "sweep",
			Usage: "Delete expired contents and expired empty clusters once",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				deletionUseCase, err := container.DeletionUseCase()
				if err != nil {
					return err
				}

				return commands.RunSweep(
					ctx,
					deletionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					time.Now(),
					cmd.String("format"),
				)
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
