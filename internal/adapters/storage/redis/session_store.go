// Package redis keeps in-flight chat sessions in Redis so several API
// replicas can serve the same conversation.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

const defaultPrefix = "vibe:session:"

// SessionStore implements domain.SessionStore. Each session is one JSON
// value; a sorted set scored by UpdatedAt backs the idle sweep.
type SessionStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	// SessionTTL lets Redis expire abandoned sessions on its own (0 = never).
	SessionTTL time.Duration
}

// NewSessionStore connects and pings Redis.
func NewSessionStore(ctx context.Context, cfg Config) (*SessionStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewSessionStoreFromClient(client, "", cfg.SessionTTL), nil
}

// NewSessionStoreFromClient wraps an existing client (miniredis in tests).
func NewSessionStoreFromClient(client *goredis.Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SessionStore) sessionKey(id domain.SessionID) string {
	return s.prefix + string(id)
}

func (s *SessionStore) idleKey() string {
	return s.prefix + "idle"
}

func (s *SessionStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return s.touch(ctx, session)
}

func (s *SessionStore) UpdateSession(ctx context.Context, session *domain.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetXX(ctx, s.sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return s.touch(ctx, session)
}

func (s *SessionStore) touch(ctx context.Context, session *domain.ChatSession) error {
	err := s.client.ZAdd(ctx, s.idleKey(), goredis.Z{
		Score:  float64(session.UpdatedAt.UnixMilli()),
		Member: string(session.ID),
	}).Err()
	if err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.SentimentCounts == nil {
		sess.SentimentCounts = domain.NewSentimentCounts()
	}
	return &sess, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, id domain.SessionID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(id))
	pipe.ZRem(ctx, s.idleKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteIdle removes sessions whose UpdatedAt is before the cutoff. Index
// entries left behind by TTL expiry are cleaned up but not counted.
func (s *SessionStore) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.idleKey(), &goredis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("scan idle sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(domain.SessionID(id))
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, s.idleKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	return int(del.Val()), nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}
