package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mrlynn/securehealth-sub006/cmd/app/commands"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new Master Key for DEK wrapping",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   "",
					Usage:   "Master key ID (e.g., prod-master-key-2026)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
				return commands.RunCreateMasterKey(
					logger,
					commands.DefaultIO().Writer,
					cmd.String("id"),
				)
			},
		},
	}
}
