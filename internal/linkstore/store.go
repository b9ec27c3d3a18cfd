package linkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/untangled/link-server-go/internal/model"
	redisclient "github.com/untangled/link-server-go/internal/redis"
)

// Key prefixes namespace the two record kinds so a session id and a phone
// number can never collide.
const (
	linkSessionPrefix     = "linksession:"
	phoneCredentialPrefix = "phonecred:"
)

func linkSessionKey(sessionID string) string {
	return linkSessionPrefix + sessionID
}

func phoneCredentialKey(phoneNumber string) string {
	return phoneCredentialPrefix + phoneNumber
}

// Store is the ephemeral link store shared by the web API and the
// WhatsApp bot. All operations are single-key; expiry is handled by the
// backing store's native TTL, so no background sweep is needed.
type Store interface {
	PutLinkSession(ctx context.Context, session model.LinkSession, ttl time.Duration) error
	GetLinkSession(ctx context.Context, sessionID string) (*model.LinkSession, error)
	// ConsumeLinkSession atomically reads and deletes a link session.
	// Returns (nil, nil) when the session is absent or expired.
	ConsumeLinkSession(ctx context.Context, sessionID string) (*model.LinkSession, error)
	DeleteLinkSession(ctx context.Context, sessionID string) (int64, error)
	LinkSessionTTL(ctx context.Context, sessionID string) (time.Duration, error)

	PutPhoneCredential(ctx context.Context, cred model.PhoneCredential, ttl time.Duration) error
	GetPhoneCredential(ctx context.Context, phoneNumber string) (*model.PhoneCredential, error)
	DeletePhoneCredential(ctx context.Context, phoneNumber string) (int64, error)
	PhoneCredentialTTL(ctx context.Context, phoneNumber string) (time.Duration, error)
}

type redisStore struct {
	client *redisclient.Client
}

func New(client *redisclient.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) PutLinkSession(ctx context.Context, session model.LinkSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal link session: %w", err)
	}

	if err := s.client.Set(ctx, linkSessionKey(session.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store link session: %w", err)
	}

	log.Debug().
		Str("sessionId", session.SessionID).
		Dur("ttl", ttl).
		Msg("link session stored")

	return nil
}

func (s *redisStore) GetLinkSession(ctx context.Context, sessionID string) (*model.LinkSession, error) {
	return decodeLinkSession(s.client.Get(ctx, linkSessionKey(sessionID)).Result())
}

func (s *redisStore) ConsumeLinkSession(ctx context.Context, sessionID string) (*model.LinkSession, error) {
	return decodeLinkSession(s.client.GetDel(ctx, linkSessionKey(sessionID)).Result())
}

func (s *redisStore) DeleteLinkSession(ctx context.Context, sessionID string) (int64, error) {
	return s.client.Del(ctx, linkSessionKey(sessionID)).Result()
}

func (s *redisStore) LinkSessionTTL(ctx context.Context, sessionID string) (time.Duration, error) {
	return s.client.TTL(ctx, linkSessionKey(sessionID)).Result()
}

func (s *redisStore) PutPhoneCredential(ctx context.Context, cred model.PhoneCredential, ttl time.Duration) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal phone credential: %w", err)
	}

	// Keyed by phone number: a second write for the same phone replaces
	// the record and resets its TTL.
	if err := s.client.Set(ctx, phoneCredentialKey(cred.PhoneNumber), data, ttl).Err(); err != nil {
		return fmt.Errorf("store phone credential: %w", err)
	}

	log.Debug().
		Str("phoneNumber", cred.PhoneNumber).
		Dur("ttl", ttl).
		Msg("phone credential stored")

	return nil
}

func (s *redisStore) GetPhoneCredential(ctx context.Context, phoneNumber string) (*model.PhoneCredential, error) {
	data, err := s.client.Get(ctx, phoneCredentialKey(phoneNumber)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get phone credential: %w", err)
	}

	var cred model.PhoneCredential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("unmarshal phone credential: %w", err)
	}
	return &cred, nil
}

func (s *redisStore) DeletePhoneCredential(ctx context.Context, phoneNumber string) (int64, error) {
	return s.client.Del(ctx, phoneCredentialKey(phoneNumber)).Result()
}

func (s *redisStore) PhoneCredentialTTL(ctx context.Context, phoneNumber string) (time.Duration, error) {
	return s.client.TTL(ctx, phoneCredentialKey(phoneNumber)).Result()
}

func decodeLinkSession(data string, err error) (*model.LinkSession, error) {
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get link session: %w", err)
	}

	var session model.LinkSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("unmarshal link session: %w", err)
	}
	return &session, nil
}
