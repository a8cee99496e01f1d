package limiter

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	predis "github.com/tallier/tallier/platform/redis"
)

type redisLimiter struct {
	pool   *redis.Pool
	prefix string
}

// Redis returns a Limiter keeping per window hit counts in Redis.
func Redis(pool *redis.Pool, prefix string) Limiter {
	return &redisLimiter{
		pool:   pool,
		prefix: prefix,
	}
}

func (l *redisLimiter) Request(limitee *Limitee) (int64, time.Time, error) {
	var (
		con = l.pool.Get()
		key = fmt.Sprintf("%s:%s", l.prefix, limitee.Hash)
	)
	defer con.Close()

	used, err := redis.Int64(con.Do(predis.CommandIncr, key))
	if err != nil {
		return 0, time.Now(), err
	}

	ttl, err := redis.Int64(con.Do(predis.CommandTTL, key))
	if err != nil {
		return 0, time.Now(), err
	}

	// A key without expiry would lock the quota in place forever, this
	// covers fresh windows as well as keys left behind by failovers.
	if ttl < 0 {
		window := int64(limitee.WindowSize / time.Second)

		if _, err := con.Do(predis.CommandExpire, key, window); err != nil {
			return 0, time.Now(), err
		}

		ttl = window
	}

	expires := time.Now().Add(time.Duration(ttl) * time.Second)

	return limitee.Limit - used, expires, nil
}
