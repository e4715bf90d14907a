package memory

import (
	"context"
	"testing"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/notification"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepo_NewestFirstAndOwnedDelete(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo := NewNotificationRepo(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	ctx := context.Background()

	first, err := repo.Create(ctx, 1, "first")
	require.NoError(t, err)
	second, err := repo.Create(ctx, 1, "second")
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, "other")
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)

	require.ErrorIs(t, repo.DeleteByID(ctx, 2, first.ID), notification.ErrNotFound)
	require.NoError(t, repo.DeleteByID(ctx, 1, first.ID))
	require.ErrorIs(t, repo.DeleteByID(ctx, 1, first.ID), notification.ErrNotFound)

	list, err = repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "second", list[0].Content)
}
