package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NordCoder/Classbell/internal/auth"
	"github.com/NordCoder/Classbell/internal/registry"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Frames above readLimit are drained and discarded.
const readLimit = 64 << 10

type Authenticator interface {
	Resolve(ctx context.Context, token string) auth.Identity
}

type Config struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
}

var (
	mHandshakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_handshakes_total", Help: "Connection attempts by outcome.",
	}, []string{"outcome"})
	mActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_sessions_active", Help: "Open subscribed sessions.",
	})
	mInbound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_inbound_frames_total", Help: "Client frames by kind.",
	}, []string{"kind"})
	mOutbound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_outbound_frames_total", Help: "Frames written to clients.",
	})
)

// Handler accepts notification connections. appCtx ends every session when
// the process shuts down.
type Handler struct {
	appCtx context.Context
	auth   Authenticator
	reg    registry.Registry
	cfg    Config
	log    *zap.Logger

	active atomic.Int64
}

func NewHandler(appCtx context.Context, a Authenticator, reg registry.Registry, cfg Config, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Handler{
		appCtx: appCtx,
		auth:   a,
		reg:    reg,
		cfg:    cfg,
		log:    log.With(zap.String("component", "ws.session")),
	}
}

// Active reports the number of subscribed sessions served by h.
func (h *Handler) Active() int64 { return h.active.Load() }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := newSession(h.cfg.SendBuffer)
	log := h.log.With(zap.String("session", s.id))

	ident := h.auth.Resolve(r.Context(), r.URL.Query().Get("token"))
	if ident.IsAnonymous() {
		s.setState(StateRejected)
		mHandshakes.WithLabelValues("rejected").Inc()
		log.Debug("connection rejected")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	s.userID = ident.UserID
	s.setState(StateAuthenticated)
	log = log.With(zap.Int64("user_id", s.userID))

	h.reg.Join(s.userID, s)
	var once sync.Once
	release := func() {
		once.Do(func() {
			h.reg.Leave(s.userID, s)
			s.close()
			s.setState(StateClosed)
			log.Debug("session closed")
		})
	}
	defer release()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.cfg.AllowedOrigins})
	if err != nil {
		mHandshakes.WithLabelValues("upgrade_failed").Inc()
		log.Warn("websocket accept", zap.Error(err))
		return
	}
	conn.SetReadLimit(-1)
	s.setState(StateSubscribed)
	mHandshakes.WithLabelValues("accepted").Inc()
	mActive.Inc()
	h.active.Add(1)
	defer func() {
		mActive.Dec()
		h.active.Add(-1)
	}()
	log.Debug("session subscribed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.readLoop(ctx, cancel, conn, log)
	h.writeLoop(ctx, conn, s, release, log)
}

// readLoop drains client frames; it ends the session on any read error.
func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, log *zap.Logger) {
	defer cancel()
	for {
		typ, r, err := conn.Reader(ctx)
		if err != nil {
			if st := websocket.CloseStatus(err); st != -1 {
				log.Debug("client closed", zap.Int("status", int(st)))
			} else if ctx.Err() == nil {
				log.Debug("read failed", zap.Error(err))
			}
			return
		}
		data, err := io.ReadAll(io.LimitReader(r, readLimit+1))
		if err == nil && len(data) > readLimit {
			var n int64
			n, err = io.Copy(io.Discard, r)
			if err == nil {
				mInbound.WithLabelValues("malformed").Inc()
				log.Debug("discarding oversized frame", zap.Int64("bytes", int64(len(data))+n))
				continue
			}
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Debug("read failed", zap.Error(err))
			}
			return
		}
		if typ != websocket.MessageText || !json.Valid(data) {
			mInbound.WithLabelValues("malformed").Inc()
			log.Debug("discarding malformed frame", zap.Int("bytes", len(data)))
			continue
		}
		mInbound.WithLabelValues("json").Inc()
		log.Debug("inbound frame", zap.ByteString("frame", data))
	}
}

// writeLoop releases the session before starting any close handshake.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, s *Session, release func(), log *zap.Logger) {
	var ping <-chan time.Time
	if h.cfg.PingInterval > 0 {
		t := time.NewTicker(h.cfg.PingInterval)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-ctx.Done():
			release()
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return

		case <-h.appCtx.Done():
			release()
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return

		case m := <-s.out:
			wctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := wsjson.Write(wctx, conn, m)
			cancel()
			if err != nil {
				log.Debug("write failed", zap.Error(err))
				release()
				_ = conn.CloseNow()
				return
			}
			mOutbound.Inc()

		case <-ping:
			pctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				release()
				_ = conn.CloseNow()
				return
			}
		}
	}
}
