package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type GameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (*tictactoe.Controller, error)

	MakeMove(ctx context.Context, sessionID string, cell int) (*tictactoe.Controller, bool, error)
	JumpTo(ctx context.Context, sessionID string, step int) (*tictactoe.Controller, error)
	Restart(ctx context.Context, sessionID string) (*tictactoe.Controller, error)
}

type gameRepo interface {
	Save(ctx context.Context, sessionID string, state *entity.GameState) error
	GetByID(ctx context.Context, sessionID string) (*entity.GameState, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type gameUseCase struct {
	logger *slog.Logger

	// mu serializes load-modify-save of stored games.
	mu   sync.Mutex
	repo gameRepo
}

func NewGameUseCase(logger *slog.Logger, repo gameRepo) GameUseCase {
	return &gameUseCase{
		logger: logger.With("component", "game_usecase"),
		repo:   repo,
	}
}

func (that *gameUseCase) GetOrCreateGame(ctx context.Context, sessionID string) (*tictactoe.Controller, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, created, err := that.loadGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// saving a viewed game restarts its expiry together with the session cookie
	if !created {
		if err = that.saveGame(ctx, sessionID, game); err != nil {
			return nil, err
		}
	}

	return game, nil
}

func (that *gameUseCase) MakeMove(ctx context.Context, sessionID string, cell int) (*tictactoe.Controller, bool, error) {
	log := that.logger.With("method", "MakeMove", "cell", cell)

	that.mu.Lock()
	defer that.mu.Unlock()

	game, _, err := that.loadGame(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	if !game.ApplyMove(cell) {
		log.Debug("move ignored", "step", game.StepNumber(), "winner", game.Winner())
		return game, false, nil
	}

	if err = that.saveGame(ctx, sessionID, game); err != nil {
		return nil, false, err
	}

	return game, true, nil
}

func (that *gameUseCase) JumpTo(ctx context.Context, sessionID string, step int) (*tictactoe.Controller, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, _, err := that.loadGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = game.JumpTo(step); err != nil {
		return nil, fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.saveGame(ctx, sessionID, game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *gameUseCase) Restart(ctx context.Context, sessionID string) (*tictactoe.Controller, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	err := that.repo.DeleteByID(ctx, sessionID)
	if err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}

	return that.createGame(ctx, sessionID)
}

// loadGame returns the stored game of the session. A missing game is created; a stored game
// that cannot be restored is replaced by a new one. created reports that a new game was saved.
func (that *gameUseCase) loadGame(ctx context.Context, sessionID string) (*tictactoe.Controller, bool, error) {
	log := that.logger.With("method", "loadGame")

	state, err := that.repo.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		game, err := that.createGame(ctx, sessionID)
		return game, err == nil, err
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get game: %w", err)
	}

	game, err := tictactoe.Restore(state)
	if err != nil {
		log.Warn("stored game is corrupted, starting a new one", "error", err)

		game, err = that.createGame(ctx, sessionID)
		return game, err == nil, err
	}

	return game, false, nil
}

func (that *gameUseCase) createGame(ctx context.Context, sessionID string) (*tictactoe.Controller, error) {
	game := tictactoe.NewGameController()
	if err := that.saveGame(ctx, sessionID, game); err != nil {
		return nil, err
	}

	that.logger.Info("new game created")

	return game, nil
}

func (that *gameUseCase) saveGame(ctx context.Context, sessionID string, game *tictactoe.Controller) error {
	if err := that.repo.Save(ctx, sessionID, game.Snapshot()); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}
