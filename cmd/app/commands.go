package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/delta/internal/app"
	"github.com/allisson/delta/internal/client"
	"github.com/allisson/delta/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getIdentityCommands())
	cmds = append(cmds, getSecretCommands())
	cmds = append(cmds, getEventCommands())
	return cmds
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func requestorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "requestor",
		Aliases:  []string{"r"},
		Required: true,
		Sources:  cli.EnvVars("DELTA_IDENTITY_ID"),
		Usage:    "Identity that signs the request; its keys must be in the local key store",
	}
}

func metadataFlag(usage string) cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "metadata",
		Aliases: []string{"m"},
		Usage:   usage,
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Page number, starting at 1"},
		&cli.IntFlag{Name: "page-size", Usage: "Number of results per page"},
	}
}

// withAPIClient builds a container from the environment and hands its API client to fn.
func withAPIClient(
	ctx context.Context,
	fn func(ctx context.Context, container *app.Container, apiClient client.APIClient) error,
) error {
	container := app.NewContainer(config.Load())
	defer func() { _ = container.Shutdown(ctx) }()

	apiClient, err := container.APIClient()
	if err != nil {
		return err
	}
	return fn(ctx, container, apiClient)
}
