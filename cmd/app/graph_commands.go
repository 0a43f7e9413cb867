package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/devkral/secretgraph/cmd/app/commands"
	"github.com/devkral/secretgraph/internal/app"
	"github.com/devkral/secretgraph/internal/config"
)

func getGraphCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-cluster",
			Usage: "Create a cluster with a manage action and print its token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "Cluster name",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Cluster description",
				},
				&cli.BoolFlag{
					Name:    "public",
					Aliases: []string{"p"},
					Value:   false,
					Usage:   "Whether public contents of the cluster are visible without tokens",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				clusterUseCase, err := container.ClusterUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateCluster(
					ctx,
					clusterUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("description"),
					cmd.Bool("public"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "regenerate-key-hashes",
			Usage: "Migrate public key hashes after the hash algorithms changed",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Recheck every public key, not only those with a foreign hash length",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyHashUseCase, err := container.KeyHashUseCase()
				if err != nil {
					return err
				}

				return commands.RunRegenerateKeyHashes(
					ctx,
					keyHashUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Bool("force"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "fill-flexids",
			Usage: "Assign flexids to clusters and contents lacking one",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				clusterUseCase, err := container.ClusterUseCase()
				if err != nil {
					return err
				}

				return commands.RunFillFlexIDs(
					ctx,
					clusterUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
