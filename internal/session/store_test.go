package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"authportal/internal/common"
	"authportal/internal/config"
	"authportal/internal/platform/database"
	"authportal/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Load(ctx context.Context) (*Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, s *Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func sampleSession() Session {
	return Session{
		User: shared.User{ID: "u1", Name: "Ann", Email: "a@b.com", AuthType: shared.AuthTypePassword},
		Credential: Credential{
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			Provider:     shared.AuthTypePassword,
		},
	}
}

func newSQLiteRepository(t *testing.T) *GORMRepository {
	t.Helper()
	cfg := &config.Config{SessionDBPath: filepath.Join(t.TempDir(), "session.db"), LogLevel: "error"}
	db, err := database.NewGORM(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseGORMDB(db, zap.NewNop()) })

	repo, err := NewGORMRepository(db, "@portal:session")
	require.NoError(t, err)
	return repo
}

func TestGORMRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	s := sampleSession()
	require.NoError(t, repo.Save(ctx, &s))

	s.User.Name = "Anna"
	require.NoError(t, repo.Save(ctx, &s), "second save must overwrite the row")

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anna", loaded.User.Name)
	assert.Equal(t, s.Credential.IDToken, loaded.Credential.IDToken)
	assert.True(t, s.Credential.ExpiresAt.Equal(loaded.Credential.ExpiresAt))

	require.NoError(t, repo.Delete(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_LoadRestoresAndInitializes(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	s := sampleSession()
	require.NoError(t, repo.Save(ctx, &s))

	store := NewStore(repo, zap.NewNop())
	assert.False(t, store.Initialized())
	assert.Nil(t, store.Current())

	require.NoError(t, store.Load(ctx))
	assert.True(t, store.Initialized())
	require.NotNil(t, store.CurrentUser())
	assert.Equal(t, "a@b.com", store.CurrentUser().Email)
}

func TestStore_LoadFailureStillInitializes(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Load", mock.Anything).Return(nil, errors.New("disk gone"))

	store := NewStore(repo, zap.NewNop())
	err := store.Load(context.Background())

	assert.Error(t, err)
	assert.True(t, store.Initialized())
	assert.Nil(t, store.Current())
}

func TestStore_PersistFailureKeepsMemory(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only"))
	repo.On("Delete", mock.Anything).Return(errors.New("read-only"))

	store := NewStore(repo, zap.NewNop())
	err := store.Set(context.Background(), sampleSession())
	assert.Error(t, err)
	require.NotNil(t, store.Current())
	assert.Equal(t, "u1", store.Current().User.ID)

	err = store.Clear(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store.Current())
}

func TestStore_CurrentIsACopy(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	store := NewStore(repo, zap.NewNop())
	require.NoError(t, store.Set(context.Background(), sampleSession()))

	got := store.Current()
	got.User.Name = "mutated"
	assert.Equal(t, "Ann", store.Current().User.Name)
}

func TestStore_UpdateAndSubscribe(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	repo.On("Delete", mock.Anything).Return(nil)
	store := NewStore(repo, zap.NewNop())
	ctx := context.Background()

	var mu sync.Mutex
	var seen []*Session
	unsubscribe := store.Subscribe(func(s *Session) {
		// listeners run outside the lock, so reading the store here must not deadlock
		_ = store.Current()
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	changed, err := store.Update(ctx, func(*Session) bool { return true })
	require.NoError(t, err)
	assert.False(t, changed, "update while signed out is a no-op")

	require.NoError(t, store.Set(ctx, sampleSession()))
	changed, err = store.Update(ctx, func(s *Session) bool {
		s.User.Phone = "+15550100"
		return true
	})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.Update(ctx, func(*Session) bool { return false })
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, store.Clear(ctx))
	unsubscribe()
	require.NoError(t, store.Set(ctx, sampleSession()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, "u1", seen[0].User.ID)
	assert.Equal(t, "+15550100", seen[1].User.Phone)
	assert.Nil(t, seen[2])
	repo.AssertNumberOfCalls(t, "Save", 3)
}

func TestCredential_ExpiresWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Credential{ExpiresAt: now.Add(5 * time.Minute)}

	assert.False(t, c.ExpiresWithin(now, time.Minute))
	assert.True(t, c.ExpiresWithin(now, 10*time.Minute))
	assert.True(t, Credential{ExpiresAt: now.Add(-time.Second)}.ExpiresWithin(now, 0))
	assert.False(t, Credential{}.ExpiresWithin(now, time.Hour))
}
