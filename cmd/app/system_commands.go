package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/delta/cmd/app/commands"
	"github.com/allisson/delta/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "dev-server",
			Usage: "Start an in-memory Delta server for local development",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunDevServer(ctx, config.Load(), version)
			},
		},
	}
}
