package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

var _ GameRepository = (*MemoryGameRepository)(nil)

type memoryEntry struct {
	state     entity.GameState
	expiresAt time.Time
}

// MemoryGameRepository keeps games in process memory with the same expiry rules as the
// redis repository.
type MemoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryGameRepository(ttl time.Duration) *MemoryGameRepository {
	return &MemoryGameRepository{
		games: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (that *MemoryGameRepository) Save(_ context.Context, sessionID string, state *entity.GameState) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[sessionID] = memoryEntry{
		state:     copyState(state),
		expiresAt: that.now().Add(that.ttl),
	}

	return nil
}

func (that *MemoryGameRepository) GetByID(_ context.Context, sessionID string) (*entity.GameState, error) {
	that.mu.RLock()
	entry, ok := that.games[sessionID]
	that.mu.RUnlock()

	if !ok || that.isExpired(entry) {
		return nil, apperror.ErrGameNotFound
	}

	state := copyState(&entry.state)

	return &state, nil
}

func (that *MemoryGameRepository) DeleteByID(_ context.Context, sessionID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.games[sessionID]
	if !ok || that.isExpired(entry) {
		delete(that.games, sessionID)
		return apperror.ErrGameNotFound
	}

	delete(that.games, sessionID)

	return nil
}

// DeleteExpired drops expired games and returns how many were removed.
func (that *MemoryGameRepository) DeleteExpired() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	removed := 0
	for sessionID, entry := range that.games {
		if that.isExpired(entry) {
			delete(that.games, sessionID)
			removed++
		}
	}

	return removed
}

// RunJanitor calls DeleteExpired every interval until ctx is done.
func (that *MemoryGameRepository) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.DeleteExpired()
		}
	}
}

func (that *MemoryGameRepository) isExpired(entry memoryEntry) bool {
	return !that.now().Before(entry.expiresAt)
}

func copyState(state *entity.GameState) entity.GameState {
	history := make([]entity.Board, len(state.History))
	copy(history, state.History)

	return entity.GameState{
		History: history,
		Step:    state.Step,
	}
}
