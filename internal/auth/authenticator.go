package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Identity is the result of resolving a bearer token. The zero value is
// Anonymous.
type Identity struct {
	UserID int64
}

var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool { return i.UserID <= 0 }

type Config struct {
	Secret []byte
	Leeway time.Duration
	Now    func() time.Time
}

type Authenticator struct {
	users  user.Directory
	cfg    Config
	parser *jwt.Parser
	log    *zap.Logger
}

func NewAuthenticator(users user.Directory, cfg Config, log *zap.Logger) *Authenticator {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{
		users: users,
		cfg:   cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(cfg.Leeway),
			jwt.WithTimeFunc(cfg.Now),
		),
		log: log.With(zap.String("component", "auth.authenticator")),
	}
}

// Resolve never fails: every problem with the token or the user yields
// Anonymous.
func (a *Authenticator) Resolve(ctx context.Context, token string) Identity {
	token = strings.TrimSpace(token)
	if token == "" {
		return Anonymous
	}

	var claims AccessClaims
	if _, err := a.parser.ParseWithClaims(token, &claims, a.key); err != nil {
		a.log.Debug("token rejected", zap.Error(err))
		return Anonymous
	}
	if claims.TokenType != "" && claims.TokenType != accessTokenType {
		a.log.Debug("token rejected", zap.String("token_type", claims.TokenType))
		return Anonymous
	}
	id, err := claims.userID()
	if err != nil {
		a.log.Debug("token rejected", zap.Error(err))
		return Anonymous
	}

	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			a.log.Warn("user lookup failed", zap.Int64("user_id", id), zap.Error(err))
		}
		return Anonymous
	}
	if !u.IsActive {
		a.log.Debug("token rejected: inactive user", zap.Int64("user_id", id))
		return Anonymous
	}
	return Identity{UserID: u.ID}
}

func (a *Authenticator) key(*jwt.Token) (any, error) {
	return a.cfg.Secret, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
