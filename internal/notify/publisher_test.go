package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/NordCoder/Classbell/internal/domain/notification"
	"github.com/NordCoder/Classbell/internal/domain/user"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/registry"
	"github.com/NordCoder/Classbell/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type capturedPush struct {
	userID int64
	msg    registry.Message
}

type captureBus struct {
	mu     sync.Mutex
	pushes []capturedPush
}

func (b *captureBus) Publish(_ context.Context, userID int64, msg registry.Message) {
	b.mu.Lock()
	b.pushes = append(b.pushes, capturedPush{userID, msg})
	b.mu.Unlock()
}

type failingStore struct {
	notification.Store
	failures int
	calls    int
}

func (s *failingStore) Create(ctx context.Context, userID int64, content string) (*notification.Notification, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("db down")
	}
	return s.Store.Create(ctx, userID, content)
}

func users() *memory.UserRepo {
	return memory.NewUserRepo(
		user.User{ID: 1, Username: "u1", IsActive: true},
		user.User{ID: 2, Username: "u2", IsActive: true},
		user.User{ID: 3, Username: "u3", IsActive: false},
	)
}

func TestPublish_PersistsWithoutSubscribers(t *testing.T) {
	t.Parallel()

	store := memory.NewNotificationRepo(nil)
	p := NewPublisher(store, users(), registry.NewHub(nil), retry.Once, nil)

	require.NoError(t, p.Publish(context.Background(), 1, "Your profile has been updated."))

	list, err := store.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Your profile has been updated.", list[0].Content)
}

func TestPublish_PushesPersistedRecord(t *testing.T) {
	t.Parallel()

	store := memory.NewNotificationRepo(nil)
	bus := &captureBus{}
	p := NewPublisher(store, users(), bus, retry.Once, nil)

	require.NoError(t, p.Publish(context.Background(), 2, "X has enrolled in your course."))

	require.Len(t, bus.pushes, 1)
	require.Equal(t, int64(2), bus.pushes[0].userID)
	require.Equal(t, "X has enrolled in your course.", bus.pushes[0].msg.Text)
	require.NotZero(t, bus.pushes[0].msg.ID)
}

func TestPublish_StorageFailureAbortsDelivery(t *testing.T) {
	t.Parallel()

	store := &failingStore{Store: memory.NewNotificationRepo(nil), failures: 100}
	bus := &captureBus{}
	p := NewPublisher(store, users(), bus, retry.Once, nil)

	err := p.Publish(context.Background(), 1, "lost")
	require.Error(t, err)
	require.Empty(t, bus.pushes)
}

func TestPublish_RetriesPersistence(t *testing.T) {
	t.Parallel()

	store := &failingStore{Store: memory.NewNotificationRepo(nil), failures: 2}
	bus := &captureBus{}
	pol := retry.Policy{Name: "test_persist", Attempts: 3, Backoff: retry.ExpoJitter{}}
	p := NewPublisher(store, users(), bus, pol, nil)

	require.NoError(t, p.Publish(context.Background(), 1, "eventually"))
	require.Equal(t, 3, store.calls)
	require.Len(t, bus.pushes, 1)
}

func TestPublish_SkipsMissingAndInactiveUsers(t *testing.T) {
	t.Parallel()

	store := memory.NewNotificationRepo(nil)
	bus := &captureBus{}
	p := NewPublisher(store, users(), bus, retry.Once, nil)

	require.NoError(t, p.Publish(context.Background(), 404, "nobody"))
	require.NoError(t, p.Publish(context.Background(), 3, "inactive"))
	require.Empty(t, bus.pushes)

	list, err := store.ListByUser(context.Background(), 404)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPublishBatch_OnePerTarget(t *testing.T) {
	t.Parallel()

	store := memory.NewNotificationRepo(nil)
	bus := &captureBus{}
	p := NewPublisher(store, users(), bus, retry.Once, nil)

	const text = "New material has been uploaded by T."
	require.NoError(t, p.PublishBatch(context.Background(), []int64{1, 404, 2}, text))

	require.Len(t, bus.pushes, 2)
	for _, uid := range []int64{1, 2} {
		list, err := store.ListByUser(context.Background(), uid)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, text, list[0].Content)
	}
}

func TestPublish_OrderIsPreservedPerUser(t *testing.T) {
	t.Parallel()

	store := memory.NewNotificationRepo(nil)
	p := NewPublisher(store, users(), registry.NewHub(nil), retry.Once, nil)

	for _, c := range []string{"one", "two", "three"} {
		require.NoError(t, p.Publish(context.Background(), 1, c))
	}
	list, err := store.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "three", list[0].Content)
	require.Equal(t, "one", list[2].Content)
	require.False(t, list[2].CreatedAt.After(list[0].CreatedAt))
}
