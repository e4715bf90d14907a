//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/notification"
	"github.com/NordCoder/Classbell/internal/domain/outbox"
	"github.com/NordCoder/Classbell/internal/domain/user"
	pg "github.com/NordCoder/Classbell/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openPG(t *testing.T, cfg Cfg) *pg.DB {
	t.Helper()
	sqlDB := DBOpen(t, cfg.DBDSN)
	_ = sqlDB.Close()

	db, err := pg.NewDB(context.Background(), pg.Config{DSN: cfg.DBDSN, QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestPostgres_NotificationStore(t *testing.T) {
	cfg := LoadCfg()
	ctx := context.Background()
	db := openPG(t, cfg)

	users := pg.NewUserRepo(db)
	owner := &user.User{Username: "pg-owner-" + uuid.NewString(), IsActive: true}
	other := &user.User{Username: "pg-other-" + uuid.NewString(), IsActive: true}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))
	require.ErrorIs(t, users.Create(ctx, &user.User{Username: owner.Username}), pg.ErrConflict)

	got, err := users.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, owner.Username, got.Username)
	_, err = users.GetByID(ctx, -1)
	require.ErrorIs(t, err, user.ErrNotFound)

	store := pg.NewNotificationRepo(db)
	a, err := store.Create(ctx, owner.ID, "A")
	require.NoError(t, err)
	b, err := store.Create(ctx, owner.ID, "B")
	require.NoError(t, err)
	require.False(t, b.CreatedAt.Before(a.CreatedAt))

	list, err := store.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, b.ID, list[0].ID)
	require.Equal(t, a.ID, list[1].ID)

	require.ErrorIs(t, store.DeleteByID(ctx, other.ID, a.ID), notification.ErrNotFound)
	require.NoError(t, store.DeleteByID(ctx, owner.ID, a.ID))
	require.ErrorIs(t, store.DeleteByID(ctx, owner.ID, a.ID), notification.ErrNotFound)

	list, err = store.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestPostgres_OutboxPickAndMark(t *testing.T) {
	cfg := LoadCfg()
	ctx := context.Background()
	db := openPG(t, cfg)

	repo := pg.NewOutboxRepo(db)
	tx := pg.NewTransactor(db, nil)
	key := uuid.NewString()

	err := tx.WithTx(ctx, func(ctx context.Context) error {
		return repo.Enqueue(ctx, key, outbox.KindDomainEvent, []byte(`{"id":"x"}`))
	})
	require.NoError(t, err)

	rollback := uuid.NewString()
	err = tx.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.Enqueue(ctx, rollback, outbox.KindDomainEvent, []byte(`{}`)); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var picked []outbox.Message
	require.Eventually(t, func() bool {
		batch, err := repo.PickBatch(ctx, 1000, time.Minute)
		require.NoError(t, err)
		picked = append(picked, batch...)
		for _, m := range picked {
			if m.IdempotencyKey == key {
				return true
			}
		}
		return false
	}, 10*time.Second, 200*time.Millisecond)

	for _, m := range picked {
		require.NotEqual(t, rollback, m.IdempotencyKey)
	}
	keys := make([]string, 0, len(picked))
	for _, m := range picked {
		keys = append(keys, m.IdempotencyKey)
	}
	require.NoError(t, repo.MarkSuccess(ctx, keys))
}
