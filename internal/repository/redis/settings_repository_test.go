package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nadmax/yantodo/internal/algorithm"
	"github.com/nadmax/yantodo/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

func setupTestRepository(t *testing.T) (*SettingsRepository, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	repo, err := NewSettingsRepository(mr.Addr())
	require.NoError(t, err)
	repo.SetClock(func() time.Time { return fixedNow })

	return repo, mr
}

func TestNewSettingsRepository_InvalidAddress(t *testing.T) {
	_, err := NewSettingsRepository("invalid:99999")
	assert.Error(t, err)
}

func TestGetSettings_DefaultsWhenMissing(t *testing.T) {
	repo, mr := setupTestRepository(t)
	defer mr.Close()
	defer func() { _ = repo.Close() }()

	s, err := repo.GetSettings(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, algorithm.DefaultConfig(), s.AlgorithmConfig())
	assert.Equal(t, fixedNow, s.CreatedAt)
	assert.True(t, mr.Exists("settings:user-1"))

	repo.SetClock(func() time.Time { return fixedNow.Add(time.Hour) })

	again, err := repo.GetSettings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, again.CreatedAt.Equal(fixedNow), "created_at must not move on later reads")
}

func TestGetSettings_KeepsExistingDocument(t *testing.T) {
	repo, mr := setupTestRepository(t)
	defer mr.Close()
	defer func() { _ = repo.Close() }()

	ctx := context.Background()
	_, err := repo.UpdateSettings(ctx, "user-1", func(s *settings.Settings) error {
		s.NumCategories = 7
		return nil
	})
	require.NoError(t, err)

	s, err := repo.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, s.NumCategories)
}

func TestUpdateSettings(t *testing.T) {
	repo, mr := setupTestRepository(t)
	defer mr.Close()
	defer func() { _ = repo.Close() }()

	ctx := context.Background()

	updated, err := repo.UpdateSettings(ctx, "user-1", func(s *settings.Settings) error {
		s.NumCategories = 6
		s.RecordRecommendation("todo-3", fixedNow)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.NumCategories)
	assert.True(t, mr.Exists("settings:user-1"))

	loaded, err := repo.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.NumCategories)
	require.NotNil(t, loaded.LastRecommendedTodoID)
	assert.Equal(t, "todo-3", *loaded.LastRecommendedTodoID)

	other, err := repo.GetSettings(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, algorithm.DefaultNumCategories, other.NumCategories)
}

func TestUpdateSettings_CallbackErrorStoresNothing(t *testing.T) {
	repo, mr := setupTestRepository(t)
	defer mr.Close()
	defer func() { _ = repo.Close() }()

	boom := errors.New("rejected")
	_, err := repo.UpdateSettings(context.Background(), "user-1", func(s *settings.Settings) error {
		s.NumCategories = 9
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("settings:user-1"))
}

func TestUpdateSettings_ConcurrentWriters(t *testing.T) {
	repo, mr := setupTestRepository(t)
	defer mr.Close()
	defer func() { _ = repo.Close() }()

	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, fn := range []func(s *settings.Settings){
		func(s *settings.Settings) { s.StatsForNerds = true },
		func(s *settings.Settings) { s.PriorityFirst = true },
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateSettings(ctx, "user-1", func(s *settings.Settings) error {
				fn(s)
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	s, err := repo.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, s.StatsForNerds)
	assert.True(t, s.PriorityFirst)
}

func TestGetSettings_CorruptDocument(t *testing.T) {
	repo, mr := setupTestRepository(t)
	defer mr.Close()
	defer func() { _ = repo.Close() }()

	require.NoError(t, mr.Set("settings:user-1", "{not json"))

	_, err := repo.GetSettings(context.Background(), "user-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode settings")
}
