package suite

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/quatro-backend/internal/entity"
	"github.com/rocketscienceinc/quatro-backend/internal/repository"
	"github.com/rocketscienceinc/quatro-backend/internal/usecase"
	mockedUseCase "github.com/rocketscienceinc/quatro-backend/mocks/usecase"
)

// NewGameManager returns a GameManager whose repository keeps games in memory.
// Transport tests use it to exercise the real engine without a redis container.
func NewGameManager(t *testing.T) *usecase.GameManager {
	t.Helper()

	var mu sync.Mutex
	games := make(map[string][]byte)

	load := func(id string) (*entity.Game, error) {
		data, ok := games[id]
		if !ok {
			return nil, repository.ErrGameNotFound
		}

		var game entity.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return nil, err
		}

		return &game, nil
	}

	store := func(game *entity.Game) error {
		data, err := json.Marshal(game)
		if err != nil {
			return err
		}

		games[game.ID] = data

		return nil
	}

	repo := mockedUseCase.NewMockgameRepo(t)

	repo.EXPECT().
		Create(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, game *entity.Game) error {
			mu.Lock()
			defer mu.Unlock()

			if _, ok := games[game.ID]; ok {
				return repository.ErrGameAlreadyExist
			}

			return store(game)
		}).
		Maybe()

	repo.EXPECT().
		GetByID(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, id string) (*entity.Game, error) {
			mu.Lock()
			defer mu.Unlock()

			return load(id)
		}).
		Maybe()

	repo.EXPECT().
		Update(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, id string, fn func(*entity.Game) error) (*entity.Game, error) {
			mu.Lock()
			defer mu.Unlock()

			game, err := load(id)
			if err != nil {
				return nil, err
			}

			if err = fn(game); err != nil {
				return game, err
			}

			return game, store(game)
		}).
		Maybe()

	repo.EXPECT().
		DeleteByID(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()

			if _, ok := games[id]; !ok {
				return repository.ErrGameNotFound
			}
			delete(games, id)

			return nil
		}).
		Maybe()

	return usecase.NewGameManager(slog.New(slog.NewJSONHandler(io.Discard, nil)), repo)
}
