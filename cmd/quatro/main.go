package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rocketscienceinc/quatro-backend/internal/config"
	"github.com/rocketscienceinc/quatro-backend/internal/console"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "quatro",
		Usage: "four-in-a-line with shared pieces",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "play a hot-seat game in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "player1", Usage: "name of the player who moves first", Required: true},
					&cli.StringFlag{Name: "player2", Usage: "name of the second player", Required: true},
				},
				Action: play,
			},
		},
	}
}

func play(ctx context.Context, cmd *cli.Command) error {
	logger := initLogger(cmd.String("log-level"))

	session, err := console.NewSession(logger, cmd.String("player1"), cmd.String("player2"), os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	logger.Info("starting local game", "player1", cmd.String("player1"), "player2", cmd.String("player2"))

	return session.Run(ctx)
}

func initLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel(level)}))
}
