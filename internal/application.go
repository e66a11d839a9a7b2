package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/rest"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/websocket"
)

// janitorInterval is how often expired in-memory games are dropped.
const janitorInterval = time.Minute

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

	gameRepo, closeRepo, err := newGameRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	sessionStore, err := newSessionStore(logger, conf)
	if err != nil {
		return err
	}

	gameUseCase := usecase.NewGameUseCase(logger, gameRepo)
	wsServer := websocket.New(logger, gameUseCase, sessionStore)

	httpServer := rest.NewServer(
		logger,
		conf.HTTPPort,
		sessionStore,
		rest.NewGameHandler(logger, gameUseCase),
		rest.NewPingHandler(),
		wsServer.Handler(ctx),
	)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		if httpErr := httpServer.Start(); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

// newGameRepository - picks the session store from the config.
func newGameRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	log := logger.With("component", "app")

	if conf.Storage == config.StorageMemory {
		repo := repository.NewMemoryGameRepository(conf.SessionTTL)
		go repo.RunJanitor(ctx, janitorInterval)

		log.Info("Using in-memory game storage")

		return repo, func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using redis game storage", "addr", redisAddrString)

	closeRepo := func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage.Connection, conf.SessionTTL), closeRepo, nil
}

// newSessionStore - signed cookie store shared by the page and the websocket.
func newSessionStore(logger *slog.Logger, conf *config.Config) (*sessions.CookieStore, error) {
	key := []byte(conf.SessionKey)
	if len(key) == 0 {
		generated, err := pkg.GenerateSessionKey()
		if err != nil {
			return nil, err
		}

		logger.Warn("session-key is not configured, sessions will not survive a restart")

		key = generated
	}

	return pkg.NewSessionStore(key, conf.SessionTTL), nil
}
