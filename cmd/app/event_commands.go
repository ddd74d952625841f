package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/delta/cmd/app/commands"
	"github.com/allisson/delta/internal/app"
	"github.com/allisson/delta/internal/client"
)

func getEventCommands() *cli.Command {
	return &cli.Command{
		Name:  "event",
		Usage: "Inspect audit events",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List audit events visible to the requestor",
				Flags: []cli.Flag{
					requestorFlag(),
					&cli.StringFlag{Name: "secret", Aliases: []string{"s"}, Usage: "Only events about this secret"},
					&cli.StringFlag{
						Name:    "rsa-key-owner",
						Aliases: []string{"o"},
						Usage:   "Only events involving this RSA key owner",
					},
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withAPIClient(ctx, func(ctx context.Context, _ *app.Container, api client.APIClient) error {
						return commands.RunListEvents(
							ctx,
							api,
							cmd.String("requestor"),
							cmd.String("secret"),
							cmd.String("rsa-key-owner"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}
}
