package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credvault/cmd/app/commands"
	"github.com/allisson/credvault/internal/app"
	"github.com/allisson/credvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Generate a new random encryption key (base64 of 32 bytes)",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateKey(commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
		{
			Name:  "key-status",
			Usage: "Show whether an encryption key is configured and where it comes from",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				recordUseCase, err := container.RecordUseCase()
				if err != nil {
					return err
				}

				return commands.RunKeyStatus(
					ctx,
					recordUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Re-encrypt every sensitive field from the old key to the new key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "old-key",
					Required: true,
					Usage:    "Current encryption key (base64 of 32 bytes)",
					Sources:  cli.EnvVars("CREDVAULT_OLD_KEY"),
				},
				&cli.StringFlag{
					Name:     "new-key",
					Required: true,
					Usage:    "Replacement encryption key (base64 of 32 bytes)",
					Sources:  cli.EnvVars("CREDVAULT_NEW_KEY"),
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				rotationUseCase, err := container.RotationUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateKey(
					ctx,
					rotationUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("old-key"),
					cmd.String("new-key"),
					cmd.String("format"),
				)
			},
		},
	}
}
