package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/delta/cmd/app/commands"
	"github.com/allisson/delta/internal/app"
	"github.com/allisson/delta/internal/client"
	"github.com/allisson/delta/internal/config"
)

func getIdentityCommands() *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Register and inspect identities",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Generate key pairs and register a new identity",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "external-id",
						Aliases: []string{"e"},
						Usage:   "Caller-defined identifier stored with the identity",
					},
					metadataFlag("Metadata entry as key=value (repeatable)"),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					defer func() { _ = container.Shutdown(ctx) }()

					deltaClient, err := container.DeltaClient()
					if err != nil {
						return err
					}

					return commands.RunRegisterIdentity(
						ctx,
						deltaClient,
						container.Logger(),
						cmd.String("external-id"),
						cmd.StringSlice("metadata"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "get",
				Usage: "Show an identity",
				Flags: []cli.Flag{
					requestorFlag(),
					&cli.StringFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Usage:   "Identity ID (defaults to the requestor)",
					},
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunGetIdentity(
							ctx,
							api,
							cmd.String("requestor"),
							cmd.String("id"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "find",
				Usage: "Find identities by metadata",
				Flags: append([]cli.Flag{
					requestorFlag(),
					metadataFlag("Required metadata entry as key=value (repeatable, at least one)"),
					formatFlag(),
				}, pageFlags()...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunFindIdentities(
							ctx,
							api,
							cmd.String("requestor"),
							cmd.StringSlice("metadata"),
							int(cmd.Int("page")),
							int(cmd.Int("page-size")),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "update-metadata",
				Usage: "Replace an identity's metadata",
				Flags: []cli.Flag{
					requestorFlag(),
					&cli.StringFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Usage:   "Identity ID (defaults to the requestor)",
					},
					metadataFlag("Metadata entry as key=value (repeatable); omit to clear"),
					&cli.IntFlag{
						Name:     "version",
						Required: true,
						Usage:    "Current metadata version",
					},
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, container *app.Container, api client.APIClient) error {
						return commands.RunUpdateIdentityMetadata(
							ctx,
							api,
							container.Logger(),
							cmd.String("requestor"),
							cmd.String("id"),
							cmd.StringSlice("metadata"),
							int(cmd.Int("version")),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}
}
