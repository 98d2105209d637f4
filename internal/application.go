package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rocketscienceinc/quatro-backend/internal/config"
	"github.com/rocketscienceinc/quatro-backend/internal/repository"
	"github.com/rocketscienceinc/quatro-backend/internal/repository/storage"
	"github.com/rocketscienceinc/quatro-backend/internal/usecase"
	"github.com/rocketscienceinc/quatro-backend/transport/rest"
	"github.com/rocketscienceinc/quatro-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisClient, err := storage.NewRedisClient(ctx, conf.Redis)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisClient, conf.GameTTL)
	gameUseCase := usecase.NewGameManager(logger, gameRepo)

	return serve(ctx, log,
		component{name: "HTTP", port: conf.HTTPPort, server: rest.New(logger, gameUseCase)},
		component{name: "WebSocket", port: conf.SocketPort, server: websocket.New(logger, gameUseCase)},
	)
}

type server interface {
	Start(ctx context.Context, port string) error
}

type component struct {
	name   string
	port   string
	server server
}

// serve - runs every server until ctx is cancelled or one of them fails,
// then waits for all of them to shut down.
func serve(ctx context.Context, log *slog.Logger, components ...component) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(components))

	for _, c := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()

			log.Info("Starting server", "server", c.name, "port", c.port)
			if err := c.server.Start(ctx, c.port); err != nil {
				log.Error("server error", "server", c.name, "error", err)
				errCh <- fmt.Errorf("%s server error: %w", c.name, err)
			}
		}()
	}

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	cancel()
	wg.Wait()

	return err
}
