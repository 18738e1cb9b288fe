package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/config"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/repository"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/service"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/tactical-tictactoe/transport/rest"
	"golang.org/x/sync/errgroup"
)

const sweepInterval = time.Minute

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT/SIGTERM or a component fails.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" || redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	automated := entity.Cell(conf.Bot.Mark)

	sessionRepo := repository.NewSessionRepository(redisStorage.Connection, conf.SessionTTL)
	resultRepo := repository.NewResultRepository(sqliteStorage.Connection)

	botService := service.NewBotService(conf.Bot.ThinkDelay)
	sessionService := service.NewSessionService(logger, sessionRepo, tictactoe.NewPolicy(nil), automated)
	resultService := service.NewResultService(resultRepo)

	gameUseCase := usecase.NewGameUseCase(logger, sessionService, resultService, botService)

	server := rest.New(logger, conf.HTTPPort, rest.NewPingHandler(), rest.NewHandlers(logger, gameUseCase))

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		if httpErr := server.Start(ctx); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}

		return nil
	})

	errg.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if dropped := sessionService.Sweep(conf.SessionTTL); dropped > 0 {
					log.Info("idle sessions dropped", "count", dropped)
				}
			}
		}
	})

	log.Info("application started", "bot_mark", automated, "think_delay", conf.Bot.ThinkDelay)

	err = errg.Wait()

	// let pending automated moves land before the storages close
	botService.Wait()

	if err != nil {
		return err
	}

	log.Info("application context canceled, shutting down")

	return nil
}
