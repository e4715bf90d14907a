package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

// AccessClaims mirrors the tokens issued by the account service: the user id
// travels in "user_id", with "sub" as a fallback.
type AccessClaims struct {
	UserID    int64  `json:"user_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) userID() (int64, error) {
	if c.UserID > 0 {
		return c.UserID, nil
	}
	if c.Subject == "" {
		return 0, fmt.Errorf("no user id in claims")
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad subject %q", c.Subject)
	}
	return id, nil
}

// Sign issues an HS256 access token for userID.
func Sign(secret []byte, userID int64, now time.Time, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		UserID:    userID,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign access: %w", err)
	}
	return s, nil
}
