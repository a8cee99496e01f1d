// Package redis abstracts common Redis operations.
package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"
)

// Redis commands and arguments.
const (
	CommandAuth   = "AUTH"
	CommandDel    = "DEL"
	CommandEx     = "EX"
	CommandExpire = "EXPIRE"
	CommandGet    = "GET"
	CommandIncr   = "INCR"
	CommandNx     = "NX"
	CommandPing   = "PING"
	CommandSet    = "SET"
	CommandTTL    = "TTL"
)

// Pool constructs a resource pool holding a number of Conns.
func Pool(addr, password string) *redis.Pool {
	return &redis.Pool{
		Dial:        dialFunc(addr, password),
		IdleTimeout: 240 * time.Second,
		MaxActive:   0,
		MaxIdle:     32,
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}

			_, err := c.Do(CommandPing)
			return err
		},
		Wait: false,
	}
}

func dialFunc(addr, password string) func() (redis.Conn, error) {
	return func() (redis.Conn, error) {
		c, err := redis.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}

		if password != "" {
			if _, err := c.Do(CommandAuth, password); err != nil {
				c.Close()
				return nil, err
			}
		}

		return c, nil
	}
}
