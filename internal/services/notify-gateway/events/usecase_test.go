package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/event"
	"github.com/NordCoder/Classbell/internal/domain/outbox"
	"github.com/stretchr/testify/require"
)

type passTx struct{ calls int }

func (p *passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type recordOutbox struct {
	outbox.Repository
	keys []string
	data [][]byte
	err  error
}

func (r *recordOutbox) Enqueue(_ context.Context, key string, kind outbox.Kind, data []byte) error {
	if r.err != nil {
		return r.err
	}
	if kind != outbox.KindDomainEvent {
		return errors.New("unexpected kind")
	}
	r.keys = append(r.keys, key)
	r.data = append(r.data, data)
	return nil
}

func TestSubmit_EnqueuesEnvelope(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := &passTx{}
	ob := &recordOutbox{}
	uc := New(tx, ob, func() time.Time { return now }, nil)

	env, err := uc.Submit(context.Background(), event.TypeEnrollmentCreated,
		json.RawMessage(`{"teacher_id":4,"student_name":"Alice"}`))
	require.NoError(t, err)
	require.Equal(t, 1, tx.calls)
	require.Equal(t, []string{env.ID}, ob.keys)

	var stored event.Envelope
	require.NoError(t, json.Unmarshal(ob.data[0], &stored))
	require.Equal(t, env.ID, stored.ID)
	require.True(t, now.Equal(stored.OccurredAt))

	n, err := stored.Notice()
	require.NoError(t, err)
	require.Equal(t, []int64{4}, n.Targets)
	require.Equal(t, "Alice has enrolled in your course.", n.Content)
}

func TestSubmit_RejectsInvalidEvents(t *testing.T) {
	t.Parallel()

	tx := &passTx{}
	uc := New(tx, &recordOutbox{}, nil, nil)

	_, err := uc.Submit(context.Background(), "course_deleted", json.RawMessage(`{}`))
	require.ErrorIs(t, err, event.ErrUnknownType)

	_, err = uc.Submit(context.Background(), event.TypeMaterialUploaded, json.RawMessage(`{"teacher_name":"Bob"}`))
	require.ErrorIs(t, err, event.ErrInvalidPayload)

	require.Zero(t, tx.calls)
}

func TestSubmit_PropagatesStorageFailure(t *testing.T) {
	t.Parallel()

	uc := New(&passTx{}, &recordOutbox{err: errors.New("db down")}, nil, nil)
	_, err := uc.Submit(context.Background(), event.TypeProfileUpdated, json.RawMessage(`{"user_id":9}`))
	require.Error(t, err)
	require.NotErrorIs(t, err, event.ErrInvalidPayload)
}
