package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore shares one session between processes on a workstation, keyed
// under a prefix such as "mindsight:<profile>".
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisStore connects using a redis:// URL.
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "[NewRedisStore] invalid redis url")
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), prefix), nil
}

func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "mindsight"
	}
	return &RedisStore{client: client, prefix: prefix, timeout: 3 * time.Second}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) Token() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	token, err := s.client.Get(ctx, s.key(TokenKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "[RedisStore.Token]")
	}
	return token, nil
}

func (s *RedisStore) SetToken(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(TokenKey), token, 0).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.SetToken]")
	}
	return nil
}

func (s *RedisStore) User() (*users.CurrentUser, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key(CurrentUserKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[RedisStore.User]")
	}

	var u users.CurrentUser
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, errors.Wrap(err, "[RedisStore.User] corrupt cached user")
	}
	return &u, nil
}

func (s *RedisStore) SetUser(user *users.CurrentUser) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if user == nil {
		return errors.Wrap(s.client.Del(ctx, s.key(CurrentUserKey)).Err(), "[RedisStore.SetUser]")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[RedisStore.SetUser] marshal")
	}
	if err := s.client.Set(ctx, s.key(CurrentUserKey), data, 0).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.SetUser]")
	}
	return nil
}

// Clear deletes both keys in a single DEL.
func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(TokenKey), s.key(CurrentUserKey)).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Clear]")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
