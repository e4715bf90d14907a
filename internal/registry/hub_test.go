package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type recordingHandle struct {
	id  string
	err error

	mu   sync.Mutex
	msgs []Message
}

func newHandle(id string) *recordingHandle { return &recordingHandle{id: id} }

func (h *recordingHandle) ID() string { return h.id }

func (h *recordingHandle) Send(m Message) error {
	if h.err != nil {
		return h.err
	}
	h.mu.Lock()
	h.msgs = append(h.msgs, m)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandle) received() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Message(nil), h.msgs...)
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	h := newHandle("a")

	hub.Join(1, h)
	hub.Join(1, h)
	require.Equal(t, 1, hub.Subscribers(1))

	hub.Publish(context.Background(), 1, Message{Text: "hello"})
	require.Len(t, h.received(), 1)
	require.Equal(t, "hello", h.received()[0].Text)
}

func TestHub_LeaveTwiceIsSameAsOnce(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	a, b := newHandle("a"), newHandle("b")
	hub.Join(1, a)
	hub.Join(1, b)

	hub.Leave(1, a)
	hub.Leave(1, a)
	require.Equal(t, 1, hub.Subscribers(1))

	hub.Leave(2, a)
	hub.Leave(1, b)
	require.Zero(t, hub.Subscribers(1))
}

func TestHub_PublishIsolatesUsersAndFailures(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	broken := newHandle("broken")
	broken.err = ErrBufferFull
	closed := newHandle("closed")
	closed.err = ErrClosed
	ok := newHandle("ok")
	other := newHandle("other")

	hub.Join(1, broken)
	hub.Join(1, closed)
	hub.Join(1, ok)
	hub.Join(2, other)

	hub.Publish(context.Background(), 1, Message{ID: 10, Text: "X"})
	hub.Publish(context.Background(), 3, Message{Text: "nobody listens"})

	require.Len(t, ok.received(), 1)
	require.Equal(t, int64(10), ok.received()[0].ID)
	require.Empty(t, other.received())
}

func TestHub_ConcurrentMembership(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	const n = 64

	handles := make([]*recordingHandle, n)
	for i := range handles {
		handles[i] = newHandle(fmt.Sprintf("h-%d", i))
	}

	var g errgroup.Group
	for i, h := range handles {
		g.Go(func() error {
			hub.Join(7, h)
			if i%2 == 1 {
				hub.Leave(7, h)
				hub.Leave(7, h)
			}
			return nil
		})
		g.Go(func() error {
			hub.Publish(context.Background(), 7, Message{Text: "tick"})
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, n/2, hub.Subscribers(7))

	hub.Publish(context.Background(), 7, Message{Text: "final"})
	for i, h := range handles {
		got := h.received()
		finals := 0
		for _, m := range got {
			if m.Text == "final" {
				finals++
			}
		}
		if i%2 == 0 {
			require.Equal(t, 1, finals, "handle %s", h.id)
		} else {
			require.Zero(t, finals, "handle %s", h.id)
		}
	}
}

func TestHub_StopForgetsSubscriptions(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	h := newHandle("a")
	hub.Join(1, h)
	require.NoError(t, hub.Stop(context.Background()))
	require.Zero(t, hub.Subscribers(1))
	hub.Leave(1, h)
}
