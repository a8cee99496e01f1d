package core

import (
	"time"

	"github.com/tallier/tallier/platform/cache"
	"github.com/tallier/tallier/service/app"
	"github.com/tallier/tallier/service/counter"
)

// suffixDirty marks a counter identity with a writeback in flight. As long
// as the marker is set no further flush is scheduled for the identity.
const suffixDirty = "_dirty"

// CounterDecrFunc lowers the counts of the addressed counter buckets by
// delta.
type CounterDecrFunc func(
	currentApp *app.App,
	name string,
	period time.Time,
	periodTypes []counter.PeriodType,
	delta, batchSize int64,
) error

// CounterDecr lowers the counts of the addressed counter buckets by delta.
// Counts never drop below zero.
func CounterDecr(
	caches cache.CountService,
	counters counter.Service,
	src counter.Source,
) CounterDecrFunc {
	incr := CounterIncr(caches, counters, src)

	return func(
		currentApp *app.App,
		name string,
		period time.Time,
		periodTypes []counter.PeriodType,
		delta, batchSize int64,
	) error {
		return incr(currentApp, name, period, periodTypes, -delta, batchSize)
	}
}

// CounterFlushFunc persists the cached count of a single counter bucket in
// durable storage and returns the stored Counter.
type CounterFlushFunc func(
	currentApp *app.App,
	name string,
	periodType counter.PeriodType,
	period time.Time,
) (*counter.Counter, error)

// CounterFlush persists the cached count of a single counter bucket in
// durable storage.
func CounterFlush(
	caches cache.CountService,
	counters counter.Service,
) CounterFlushFunc {
	return func(
		currentApp *app.App,
		name string,
		periodType counter.PeriodType,
		period time.Time,
	) (*counter.Counter, error) {
		var (
			ns    = namespace(currentApp)
			keyID = counter.KeyID(name, periodType, period)
		)

		// The claim is released before the value is read so that deltas
		// racing in after the read schedule a fresh writeback instead of
		// being dropped.
		err := caches.Del(ns, keyID+suffixDirty)
		if err != nil {
			return nil, err
		}

		count, err := caches.Get(ns, keyID)
		if err != nil {
			if cache.IsKeyNotFound(err) {
				return nil, wrapError(ErrMissingCacheValue, "%s.%s", ns, keyID)
			}

			return nil, err
		}

		return counters.Put(ns, &counter.Counter{
			Count:       count,
			Name:        name,
			PeriodType:  periodType,
			PeriodScope: counter.Scope(periodType, period),
		})
	}
}

// CounterGetFunc returns the current count of a counter bucket.
type CounterGetFunc func(
	currentApp *app.App,
	name string,
	periodType counter.PeriodType,
	period time.Time,
) (int64, error)

// CounterGet returns the current count of a counter bucket. Misses are
// served from durable storage and seed the cache for subsequent reads.
func CounterGet(
	caches cache.CountService,
	counters counter.Service,
) CounterGetFunc {
	return func(
		currentApp *app.App,
		name string,
		periodType counter.PeriodType,
		period time.Time,
	) (int64, error) {
		if err := counter.ValidateName(name); err != nil {
			return 0, err
		}

		if period.IsZero() {
			period = time.Now().UTC()
		}

		var (
			ns    = namespace(currentApp)
			keyID = counter.KeyID(name, periodType, period)
		)

		count, err := caches.Get(ns, keyID)
		if err == nil {
			return count, nil
		}
		if !cache.IsKeyNotFound(err) {
			return 0, err
		}

		c, err := counters.Get(
			ns,
			name,
			periodType,
			counter.Scope(periodType, period),
		)
		if err != nil {
			if counter.IsNotFound(err) {
				return 0, wrapError(ErrNotFound, "counter '%s'", name)
			}

			return 0, err
		}

		// A concurrent delta may have seeded a fresher value, that one
		// stays in place.
		if _, err := caches.Add(ns, keyID, c.Count); err != nil {
			return 0, err
		}

		return c.Count, nil
	}
}

// CounterIncrFunc raises the counts of the addressed counter buckets by
// delta.
type CounterIncrFunc func(
	currentApp *app.App,
	name string,
	period time.Time,
	periodTypes []counter.PeriodType,
	delta, batchSize int64,
) error

// CounterIncr raises the counts of the addressed counter buckets by delta,
// one bucket per period type. Given a batchSize greater than zero a
// writeback is only scheduled when the count reaches a multiple of it,
// otherwise on every call.
func CounterIncr(
	caches cache.CountService,
	counters counter.Service,
	src counter.Source,
) CounterIncrFunc {
	return func(
		currentApp *app.App,
		name string,
		period time.Time,
		periodTypes []counter.PeriodType,
		delta, batchSize int64,
	) error {
		if err := counter.ValidateName(name); err != nil {
			return err
		}

		if period.IsZero() {
			period = time.Now().UTC()
		}

		if len(periodTypes) == 0 {
			periodTypes = []counter.PeriodType{counter.PeriodAll}
		}

		ns := namespace(currentApp)

		for _, periodType := range periodTypes {
			err := applyDelta(
				caches,
				counters,
				src,
				ns,
				name,
				periodType,
				period,
				delta,
				batchSize,
			)
			if err != nil {
				return err
			}
		}

		return nil
	}
}

func applyCached(
	caches cache.CountService,
	ns, keyID string,
	delta int64,
) (int64, error) {
	if delta < 0 {
		return caches.Decr(ns, keyID, -delta)
	}

	return caches.Incr(ns, keyID, delta)
}

func applyDelta(
	caches cache.CountService,
	counters counter.Service,
	src counter.Source,
	ns, name string,
	periodType counter.PeriodType,
	period time.Time,
	delta, batchSize int64,
) error {
	keyID := counter.KeyID(name, periodType, period)

	count, err := applyCached(caches, ns, keyID, delta)
	if cache.IsKeyNotFound(err) {
		count, err = seedCount(
			caches,
			counters,
			ns,
			name,
			periodType,
			period,
			keyID,
			delta,
		)
	}
	if err != nil {
		return err
	}

	if batchSize > 0 && count%batchSize != 0 {
		return nil
	}

	claimed, err := caches.Add(ns, keyID+suffixDirty, delta)
	if err != nil {
		return err
	}

	// Another delta already scheduled the writeback.
	if !claimed {
		return nil
	}

	_, err = src.Propagate(
		ns,
		name,
		periodType,
		period.UTC().Format(counter.FormatPeriod),
	)

	return err
}

func namespace(currentApp *app.App) string {
	if currentApp == nil {
		return app.NamespaceDefault
	}

	return currentApp.Namespace()
}

func seedCount(
	caches cache.CountService,
	counters counter.Service,
	ns, name string,
	periodType counter.PeriodType,
	period time.Time,
	keyID string,
	delta int64,
) (int64, error) {
	c, err := counters.Get(
		ns,
		name,
		periodType,
		counter.Scope(periodType, period),
	)
	if err != nil && !counter.IsNotFound(err) {
		return 0, err
	}

	count := delta

	if err == nil {
		count = c.Count + delta
	}

	if count < 0 {
		count = 0
	}

	// Seeding with Add keeps a concurrently stored value in place. Two
	// writers computing from the same durable snapshot can still collide,
	// the late one loses its delta until the next writeback.
	if _, err := caches.Add(ns, keyID, count); err != nil {
		return 0, err
	}

	return count, nil
}
