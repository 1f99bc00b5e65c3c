package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/mrlynn/securehealth-sub006/cmd/app/commands"
	"github.com/mrlynn/securehealth-sub006/internal/app"
	"github.com/mrlynn/securehealth-sub006/internal/config"
)

func getRecordCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "field-catalog",
			Usage: "Show the field protection table (treatment and DEK per field)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				registry, err := container.PolicyRegistry()
				if err != nil {
					return err
				}

				return commands.RunFieldCatalog(registry, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
	}
}
