// Package flake hands out unique ids partitioned by namespace.
package flake

import (
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

var (
	mu     sync.Mutex
	flakes = map[string]*sonyflake.Sonyflake{}
)

// NextID returns the next safe to use ID for the given namespace.
func NextID(namespace string) (uint64, error) {
	mu.Lock()

	f, ok := flakes[namespace]
	if !ok {
		var s sonyflake.Settings
		s.StartTime = time.Date(2016, 1, 2, 15, 4, 5, 0, time.UTC)

		f = sonyflake.NewSonyflake(s)
		flakes[namespace] = f
	}

	mu.Unlock()

	return f.NextID()
}
