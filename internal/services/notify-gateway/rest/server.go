package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/event"
	"github.com/NordCoder/Classbell/internal/domain/notification"
	"github.com/NordCoder/Classbell/internal/obs"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/events"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/httpauth"
	"github.com/NordCoder/Classbell/internal/services/notify-gateway/notifications"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	NotificationsPath = "/api/notifications/notifications/"
	SocketPath        = "/ws/notifications/"
	IngestPath        = "/internal/v1/events"
)

type Deps struct {
	Auth          httpauth.Authenticator
	Notifications *notifications.Usecase
	// Events is optional; without it the ingest route is not mounted.
	Events    *events.Usecase
	IngestKey string
	Socket    http.Handler
	Health    obs.HealthFunc
	Log       *zap.Logger
}

type Server struct {
	notifications *notifications.Usecase
	events        *events.Usecase
	log           *zap.Logger
}

type notificationJSON struct {
	ID        int64     `json:"id"`
	User      int64     `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ingestRequest struct {
	Type    event.Type      `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// NewRouter builds the gateway's HTTP surface: the notifications API, the
// socket endpoint, service ingest, health and metrics.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		notifications: d.Notifications,
		events:        d.Events,
		log:           log.With(zap.String("component", "rest")),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	api := r.Group("/api/notifications", httpauth.RequireUser(d.Auth))
	api.GET("/notifications/", s.list)
	api.DELETE("/notifications/:id/", s.remove)

	if d.Socket != nil {
		r.GET(SocketPath, gin.WrapH(d.Socket))
	}
	if d.Events != nil {
		r.POST(IngestPath, httpauth.RequireInternalToken(d.IngestKey), s.ingest)
	}

	r.GET("/healthz", gin.WrapH(obs.HealthHandler(d.Health)))
	r.GET("/metrics", gin.WrapH(obs.MetricsHandler()))
	return r
}

func (s *Server) list(c *gin.Context) {
	uid, _ := httpauth.UserIDFromCtx(c.Request.Context())

	list, err := s.notifications.List(c.Request.Context(), uid)
	if err != nil {
		s.log.Error("list notifications", zap.Int64("user_id", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
		return
	}

	out := make([]notificationJSON, 0, len(list))
	for _, n := range list {
		out = append(out, notificationJSON{ID: n.ID, User: n.UserID, Content: n.Content, CreatedAt: n.CreatedAt})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) remove(c *gin.Context) {
	uid, _ := httpauth.UserIDFromCtx(c.Request.Context())

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	switch err := s.notifications.Delete(c.Request.Context(), uid, id); {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, notification.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	default:
		s.log.Error("delete notification", zap.Int64("user_id", uid), zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
	}
}

func (s *Server) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	env, err := s.events.Submit(c.Request.Context(), req.Type, req.Payload)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"id": env.ID})
	case errors.Is(err, event.ErrUnknownType), errors.Is(err, event.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		s.log.Error("submit event", zap.String("type", string(req.Type)), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Event could not be queued."})
	}
}
