package oauth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/socialite/pkg/cookie"
)

const stateIDCookiePrefix = "oauth_sid_"

// RedisStateStore keeps the state server-side in Redis. The browser only
// holds a random identifier cookie pointing at the stored value, which makes
// it suitable for deployments where several instances share the callback.
type RedisStateStore struct {
	client  redis.UniversalClient
	cookies *cookie.Manager
	opts    stateOptions
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(client redis.UniversalClient, opts ...StateOption) *RedisStateStore {
	o := defaultStateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStateStore{client: client, cookies: o.cookies(""), opts: o}
}

// Save implements StateStore.
func (s *RedisStateStore) Save(w http.ResponseWriter, r *http.Request, key, state string) error {
	sid := uuid.NewString()
	if err := s.client.Set(r.Context(), s.redisKey(key, sid), state, s.opts.ttl).Err(); err != nil {
		return fmt.Errorf("oauth: save state: %w", err)
	}

	s.cookies.Set(w, stateIDCookiePrefix+key, sid, int(s.opts.ttl.Seconds()))
	return nil
}

// Pull implements StateStore. The stored value is deleted atomically,
// so a state can be redeemed only once.
func (s *RedisStateStore) Pull(w http.ResponseWriter, r *http.Request, key string) (string, error) {
	name := stateIDCookiePrefix + key

	sid, err := s.cookies.Get(r, name)
	if err != nil {
		return "", errors.Join(ErrInvalidState, errors.New("state id cookie not found"))
	}
	s.cookies.Delete(w, name)

	if _, err := uuid.Parse(sid); err != nil {
		return "", errors.Join(ErrInvalidState, errors.New("malformed state id cookie"))
	}

	state, err := s.client.GetDel(r.Context(), s.redisKey(key, sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errors.Join(ErrInvalidState, errors.New("state expired or already used"))
	}
	if err != nil {
		return "", fmt.Errorf("oauth: pull state: %w", err)
	}

	return state, nil
}

func (s *RedisStateStore) redisKey(key, sid string) string {
	return s.opts.keyPrefix + key + ":" + sid
}
