package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "scaffold-api"
	tokenAudience = "scaffold-client"

	// SessionTTL is how long an issued session token stays valid.
	SessionTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the fields carried by a session token.
type Claims struct {
	UserID    uint
	Username  string
	ID        string
	ExpiresAt time.Time
}

// Tokens issues and parses HS256 session tokens.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens returns a token service signing with secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a session token for the given user.
func (t *Tokens) Issue(userID uint, username string) (string, Claims, error) {
	if len(t.secret) == 0 {
		return "", Claims{}, fmt.Errorf("JWT secret not configured")
	}

	now := t.now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(SessionTTL),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      claims.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      claims.ID,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

// Parse validates tokenString and returns its claims.
func (t *Tokens) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{UserID: uint(userID)}
	claims.Username, _ = mc["username"].(string)
	claims.ID, _ = mc["jti"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Revocations tracks logged-out token IDs in Redis until they expire.
// Without a Redis client revocation is a no-op.
type Revocations struct {
	rdb *redis.Client
}

// NewRevocations wraps rdb, which may be nil.
func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb}
}

func revocationKey(jti string) string {
	return "blacklist:" + jti
}

// Revoke blacklists the token until expiresAt.
func (r *Revocations) Revoke(ctx context.Context, claims Claims) error {
	if r == nil || r.rdb == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revocationKey(claims.ID), "1", ttl).Err()
}

// IsRevoked reports whether the token was revoked. Redis failures report false.
func (r *Revocations) IsRevoked(ctx context.Context, claims Claims) bool {
	if r == nil || r.rdb == nil || claims.ID == "" {
		return false
	}
	n, err := r.rdb.Exists(ctx, revocationKey(claims.ID)).Result()
	return err == nil && n > 0
}
