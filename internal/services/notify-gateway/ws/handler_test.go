package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NordCoder/Classbell/internal/auth"
	"github.com/NordCoder/Classbell/internal/domain/user"
	"github.com/NordCoder/Classbell/internal/notify"
	"github.com/NordCoder/Classbell/internal/obs/retry"
	"github.com/NordCoder/Classbell/internal/registry"
	"github.com/NordCoder/Classbell/internal/repository/memory"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"
)

var secret = []byte("ws-secret")

type fixture struct {
	srv       *httptest.Server
	hub       *registry.Hub
	handler   *Handler
	publisher *notify.Publisher
	store     *memory.NotificationRepo
	cancel    context.CancelFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := memory.NewUserRepo(
		user.User{ID: 1, Username: "teacher", IsActive: true},
		user.User{ID: 2, Username: "student", IsActive: true},
		user.User{ID: 3, Username: "gone", IsActive: false},
	)
	hub := registry.NewHub(nil)
	store := memory.NewNotificationRepo(nil)

	appCtx, cancel := context.WithCancel(context.Background())
	a := auth.NewAuthenticator(users, auth.Config{Secret: secret}, nil)
	h := NewHandler(appCtx, a, hub, Config{SendBuffer: 8, WriteTimeout: time.Second}, nil)

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &fixture{
		srv:       srv,
		hub:       hub,
		handler:   h,
		publisher: notify.NewPublisher(store, users, hub, retry.Once, nil),
		store:     store,
		cancel:    cancel,
	}
}

func (f *fixture) url(token string) string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/?token=" + token
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := auth.Sign(secret, userID, time.Now().UTC(), time.Hour)
	require.NoError(t, err)
	return tok
}

func dial(t *testing.T, ctx context.Context, f *fixture, userID int64) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, f.url(token(t, userID)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) registry.Message {
	t.Helper()
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var m registry.Message
	require.NoError(t, wsjson.Read(rctx, conn, &m))
	return m
}

func TestSession_ReceivesEnrollmentNotice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	conn := dial(t, ctx, f, 1)
	require.Eventually(t, func() bool { return f.hub.Subscribers(1) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.publisher.Publish(ctx, 1, "Alice has enrolled in your course."))

	m := readMessage(t, ctx, conn)
	require.Equal(t, "Alice has enrolled in your course.", m.Text)
	require.NotZero(t, m.ID)
	require.False(t, m.CreatedAt.IsZero())

	list, err := f.store.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSession_ClosedConnectionStopsReceiving(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	first := dial(t, ctx, f, 2)
	second := dial(t, ctx, f, 2)
	require.Eventually(t, func() bool { return f.hub.Subscribers(2) == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, first.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return f.hub.Subscribers(2) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.publisher.Publish(ctx, 2, "New material has been uploaded by Bob."))

	m := readMessage(t, ctx, second)
	require.Equal(t, "New material has been uploaded by Bob.", m.Text)
	require.Equal(t, int64(1), f.handler.Active())
}

func TestSession_RejectsAnonymous(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	expired, err := auth.Sign(secret, 1, time.Now().UTC().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", expired, token(t, 3), token(t, 42)} {
		_, resp, err := websocket.Dial(ctx, f.url(tok), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
	require.Zero(t, f.hub.Subscribers(1))
	require.Zero(t, f.hub.Subscribers(3))
	require.Zero(t, f.hub.Subscribers(42))
	require.Zero(t, f.handler.Active())

	require.NoError(t, f.publisher.Publish(ctx, 1, "Your profile has been updated."))
}

func TestSession_DiscardsMalformedFrames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	conn := dial(t, ctx, f, 1)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, []byte{0x01}))
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"hello": "there"}))

	require.NoError(t, f.publisher.Publish(ctx, 1, "Your profile has been updated."))
	m := readMessage(t, ctx, conn)
	require.Equal(t, "Your profile has been updated.", m.Text)
}

func TestSession_ShutdownClosesGoingAway(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	conn := dial(t, ctx, f, 1)
	require.Eventually(t, func() bool { return f.handler.Active() == 1 }, time.Second, 10*time.Millisecond)

	f.cancel()

	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(rctx)
	require.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	require.Eventually(t, func() bool { return f.hub.Subscribers(1) == 0 }, time.Second, 10*time.Millisecond)
}

func TestSession_ShutdownLeavesBeforeHandshake(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	// The client never reads, so the close handshake cannot complete.
	dial(t, ctx, f, 2)
	require.Eventually(t, func() bool { return f.hub.Subscribers(2) == 1 }, time.Second, 10*time.Millisecond)

	start := time.Now()
	f.cancel()
	require.Eventually(t, func() bool { return f.hub.Subscribers(2) == 0 }, time.Second, 5*time.Millisecond)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSession_DiscardsOversizedFrame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	conn := dial(t, ctx, f, 1)
	require.Eventually(t, func() bool { return f.hub.Subscribers(1) == 1 }, time.Second, 10*time.Millisecond)

	big := `"` + strings.Repeat("a", readLimit+(6<<10)) + `"`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(big)))
	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"after": "big"}))

	require.NoError(t, f.publisher.Publish(ctx, 1, "Your profile has been updated."))
	m := readMessage(t, ctx, conn)
	require.Equal(t, "Your profile has been updated.", m.Text)
	require.Equal(t, 1, f.hub.Subscribers(1))
}

func TestSessionSend(t *testing.T) {
	t.Parallel()

	s := newSession(1)
	require.Equal(t, StateConnecting, s.State())
	require.NoError(t, s.Send(registry.Message{Text: "a"}))
	require.ErrorIs(t, s.Send(registry.Message{Text: "b"}), registry.ErrBufferFull)

	s.close()
	s.close()
	require.ErrorIs(t, s.Send(registry.Message{Text: "c"}), registry.ErrClosed)
	require.Equal(t, "closed", StateClosed.String())
}
