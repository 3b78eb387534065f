package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/mentora-api/internal/listview"
	"github.com/noah-isme/mentora-api/internal/models"
)

const defaultReviewSessionTTL = 12 * time.Hour

// ReviewSessionStore keeps each reviewer's list state (search, filter, page, reject dialog)
// between requests.
type ReviewSessionStore interface {
	Load(ctx context.Context, key string) (listview.State, bool, error)
	Save(ctx context.Context, key string, state listview.State) error
	Delete(ctx context.Context, key string) error
}

func reviewSessionKey(actor ActivityActor, kind models.ReviewKind) string {
	return fmt.Sprintf("review:session:%d:%s", actor.ID, kind)
}

// NewReviewSessionStore returns a Redis backed store, or an in-process one when client is nil.
func NewReviewSessionStore(client *redis.Client, ttl time.Duration) ReviewSessionStore {
	if ttl <= 0 {
		ttl = defaultReviewSessionTTL
	}
	if client == nil {
		return newMemorySessionStore(ttl)
	}
	return &redisSessionStore{client: client, ttl: ttl}
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisSessionStore) Load(ctx context.Context, key string) (listview.State, bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return listview.State{}, false, nil
		}
		return listview.State{}, false, err
	}

	var state listview.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return listview.State{}, false, fmt.Errorf("decode review session: %w", err)
	}
	return state, true, nil
}

func (s *redisSessionStore) Save(ctx context.Context, key string, state listview.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memorySessionEntry struct {
	state     listview.State
	expiresAt time.Time
}

type memorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memorySessionEntry
	now     func() time.Time
}

func newMemorySessionStore(ttl time.Duration) *memorySessionStore {
	return &memorySessionStore{
		ttl:     ttl,
		entries: make(map[string]memorySessionEntry),
		now:     time.Now,
	}
}

func (s *memorySessionStore) Load(_ context.Context, key string) (listview.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return listview.State{}, false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return listview.State{}, false, nil
	}
	return entry.state, true, nil
}

func (s *memorySessionStore) Save(_ context.Context, key string, state listview.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memorySessionEntry{state: state, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
