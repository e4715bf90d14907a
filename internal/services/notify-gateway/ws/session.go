package ws

import (
	"sync"
	"sync/atomic"

	"github.com/NordCoder/Classbell/internal/registry"
	"github.com/google/uuid"
)

type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateRejected
	StateSubscribed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateRejected:
		return "rejected"
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var _ registry.Handle = (*Session)(nil)

// Session is one persistent connection. It is the registry handle: the
// registry enqueues into out and the write loop drains it.
type Session struct {
	id     string
	userID int64
	state  atomic.Int32

	out       chan registry.Message
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(buffer int) *Session {
	if buffer <= 0 {
		buffer = 16
	}
	return &Session{
		id:   uuid.NewString(),
		out:  make(chan registry.Message, buffer),
		done: make(chan struct{}),
	}
}

func (s *Session) ID() string        { return s.id }
func (s *Session) UserID() int64     { return s.userID }
func (s *Session) State() State      { return State(s.state.Load()) }
func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Send never blocks. Once the session is closed it reports ErrClosed.
func (s *Session) Send(m registry.Message) error {
	select {
	case <-s.done:
		return registry.ErrClosed
	default:
	}
	select {
	case s.out <- m:
		return nil
	case <-s.done:
		return registry.ErrClosed
	default:
		return registry.ErrBufferFull
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
