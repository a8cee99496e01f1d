package cache

import (
	"strings"

	"github.com/gomodule/redigo/redis"

	predis "github.com/tallier/tallier/platform/redis"
)

const cacheTTLDefault = 86400

// The scripts guard every mutation with an existence check so that a key
// evicted or expired is never resurrected with a partial count. Decrements
// floor at zero.
const (
	luaIncr = `
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
local count = redis.call("INCRBY", KEYS[1], ARGV[1])
redis.call("EXPIRE", KEYS[1], ARGV[2])
return count`

	luaDecr = `
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
local count = redis.call("DECRBY", KEYS[1], ARGV[1])
if count < 0 then
	count = 0
	redis.call("SET", KEYS[1], count)
end
redis.call("EXPIRE", KEYS[1], ARGV[2])
return count`
)

var (
	scriptDecr = redis.NewScript(1, luaDecr)
	scriptIncr = redis.NewScript(1, luaIncr)
)

type redisCountService struct {
	pool *redis.Pool
}

// RedisCountService is a CountService backed by a shared Redis.
func RedisCountService(pool *redis.Pool) CountService {
	return &redisCountService{
		pool: pool,
	}
}

func (s *redisCountService) Add(ns, key string, value int64) (bool, error) {
	con := s.pool.Get()
	defer con.Close()

	res, err := con.Do(
		predis.CommandSet,
		prefixKey(ns, key),
		value,
		predis.CommandEx,
		cacheTTLDefault,
		predis.CommandNx,
	)
	if err != nil {
		return false, wrapError(ErrUnavailable, "add failed: %s", err)
	}

	return res != nil, nil
}

func (s *redisCountService) Decr(ns, key string, delta int64) (int64, error) {
	con := s.pool.Get()
	defer con.Close()

	res, err := scriptDecr.Do(con, prefixKey(ns, key), delta, cacheTTLDefault)
	if err != nil {
		return 0, wrapError(ErrUnavailable, "decr failed: %s", err)
	}

	if res == nil {
		return 0, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	return redis.Int64(res, nil)
}

func (s *redisCountService) Del(ns, key string) error {
	con := s.pool.Get()
	defer con.Close()

	if _, err := con.Do(predis.CommandDel, prefixKey(ns, key)); err != nil {
		return wrapError(ErrUnavailable, "del failed: %s", err)
	}

	return nil
}

func (s *redisCountService) Get(ns, key string) (int64, error) {
	con := s.pool.Get()
	defer con.Close()

	res, err := con.Do(predis.CommandGet, prefixKey(ns, key))
	if err != nil {
		return 0, wrapError(ErrUnavailable, "get failed: %s", err)
	}

	if res == nil {
		return 0, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	return redis.Int64(res, nil)
}

func (s *redisCountService) Incr(ns, key string, delta int64) (int64, error) {
	con := s.pool.Get()
	defer con.Close()

	res, err := scriptIncr.Do(con, prefixKey(ns, key), delta, cacheTTLDefault)
	if err != nil {
		return 0, wrapError(ErrUnavailable, "incr failed: %s", err)
	}

	if res == nil {
		return 0, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	return redis.Int64(res, nil)
}

func prefixKey(ns, key string) string {
	ps := []string{
		countPrefix,
		ns,
		key,
	}

	return strings.Join(ps, KeySeparator)
}
