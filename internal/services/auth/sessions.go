package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightstart/screening-api/internal/models"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps opaque session tokens in Redis. The token is the only
// thing the client holds; everything else lives server-side with a TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Create issues a new token for the user.
func (s *SessionStore) Create(ctx context.Context, identity models.Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get resolves a token to its identity and refreshes the TTL, so active
// sessions slide instead of expiring at a fixed deadline.
func (s *SessionStore) Get(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated
	}

	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	s.client.Expire(ctx, sessionKeyPrefix+token, s.ttl)

	return &identity, nil
}

// Delete invalidates a token. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
