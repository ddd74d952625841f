package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/delta/cmd/app/commands"
	"github.com/allisson/delta/internal/app"
	"github.com/allisson/delta/internal/client"
)

func secretIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "Secret ID",
	}
}

func contentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "content",
			Aliases:  []string{"c"},
			Required: true,
			Usage:    "Client-encrypted content, or '-' to read it from stdin",
		},
		&cli.StringSliceFlag{
			Name:    "encryption-detail",
			Aliases: []string{"d"},
			Usage:   "Encryption detail as key=value (repeatable, at least one)",
		},
	}
}

func getSecretCommands() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Store, share and inspect secrets",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Store a base secret",
				Flags: append([]cli.Flag{requestorFlag(), formatFlag()}, contentFlags()...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, container *app.Container, api client.APIClient) error {
						return commands.RunCreateSecret(
							ctx,
							api,
							container.Logger(),
							cmd.String("requestor"),
							cmd.String("content"),
							cmd.StringSlice("encryption-detail"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "share",
				Usage: "Share a base secret with another identity",
				Flags: append([]cli.Flag{
					requestorFlag(),
					&cli.StringFlag{
						Name:     "base-secret",
						Aliases:  []string{"b"},
						Required: true,
						Usage:    "ID of the base secret being shared",
					},
					&cli.StringFlag{
						Name:     "rsa-key-owner",
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "Identity whose public encryption key protects the shared copy",
					},
					formatFlag(),
				}, contentFlags()...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, container *app.Container, api client.APIClient) error {
						return commands.RunShareSecret(
							ctx,
							api,
							container.Logger(),
							cmd.String("requestor"),
							cmd.String("base-secret"),
							cmd.String("rsa-key-owner"),
							cmd.String("content"),
							cmd.StringSlice("encryption-detail"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "get",
				Usage: "Show a secret's descriptor and metadata",
				Flags: []cli.Flag{requestorFlag(), secretIDFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunGetSecret(
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
				Name:  "metadata",
				Usage: "Show a secret's metadata and version",
				Flags: []cli.Flag{requestorFlag(), secretIDFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunGetSecretMetadata(
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
				Name:  "content",
				Usage: "Print a secret's content",
				Flags: []cli.Flag{requestorFlag(), secretIDFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunGetSecretContent(
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
				Name:  "update-metadata",
				Usage: "Replace a secret's metadata",
				Flags: []cli.Flag{
					requestorFlag(),
					secretIDFlag(),
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
						return commands.RunUpdateSecretMetadata(
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
			{
				Name:  "delete",
				Usage: "Delete a secret",
				Flags: []cli.Flag{requestorFlag(), secretIDFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, container *app.Container, api client.APIClient) error {
						return commands.RunDeleteSecret(
							ctx,
							api,
							container.Logger(),
							cmd.String("requestor"),
							cmd.String("id"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List secrets visible to the requestor",
				Flags: append([]cli.Flag{
					requestorFlag(),
					&cli.StringFlag{
						Name:    "lookup",
						Aliases: []string{"l"},
						Value:   "any",
						Usage:   "Restrict to 'base' or 'derived' secrets",
					},
					&cli.StringFlag{Name: "base-secret", Usage: "Only secrets derived from this base secret"},
					&cli.StringFlag{Name: "created-by", Usage: "Only secrets created by this identity"},
					&cli.StringFlag{Name: "rsa-key-owner", Usage: "Only secrets encrypted for this identity"},
					metadataFlag("Required metadata entry as key=value (repeatable)"),
					formatFlag(),
				}, pageFlags()...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunListSecrets(
							ctx,
							api,
							cmd.String("requestor"),
							commands.SecretListOptions{
								Lookup:        cmd.String("lookup"),
								BaseSecretID:  cmd.String("base-secret"),
								CreatedBy:     cmd.String("created-by"),
								RSAKeyOwnerID: cmd.String("rsa-key-owner"),
								Metadata:      cmd.StringSlice("metadata"),
								Page:          int(cmd.Int("page")),
								PageSize:      int(cmd.Int("page-size")),
							},
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}
}
