package core

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/tallier/tallier/platform/cache"
	"github.com/tallier/tallier/service/app"
	"github.com/tallier/tallier/service/counter"
)

func TestCounterDecrFloor(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		decr       = CounterDecr(caches, counters, src)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{counter.PeriodAll}
	)

	err := incr(currentApp, "signups", period, types, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	err = decr(currentApp, "signups", period, types, 5, 0)
	if err != nil {
		t.Fatal(err)
	}

	count, err := CounterGet(caches, counters)(
		currentApp,
		"signups",
		counter.PeriodAll,
		period,
	)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(0); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	err = decr(currentApp, "downloads", period, types, 3, 0)
	if err != nil {
		t.Fatal(err)
	}

	count, err = CounterGet(caches, counters)(
		currentApp,
		"downloads",
		counter.PeriodAll,
		period,
	)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(0); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterFlushMissingValue(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		flush      = CounterFlush(caches, counters)
	)

	_, err := flush(currentApp, "signups", counter.PeriodDay, testPeriod())

	if have, want := err, ErrMissingCacheValue; !IsMissingCacheValue(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterFlushReclaim(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		flush      = CounterFlush(caches, counters)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{counter.PeriodAll}
	)

	err := incr(currentApp, "signups", period, types, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	err = incr(currentApp, "signups", period, types, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.Consume(); err != nil {
		t.Fatal(err)
	}

	if _, err := src.Consume(); !counter.IsEmptySource(err) {
		t.Fatal("want empty source")
	}

	c, err := flush(currentApp, "signups", counter.PeriodAll, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Count, int64(2); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	stored, err := counters.Get(
		currentApp.Namespace(),
		"signups",
		counter.PeriodAll,
		counter.ScopeAll,
	)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := stored.Count, int64(2); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	err = incr(currentApp, "signups", period, types, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	task, err := src.Consume()
	if err != nil {
		t.Fatal(err)
	}

	if have, want := task.Name, "signups"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterGetReadThrough(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		get        = CounterGet(caches, counters)
		period     = testPeriod()
	)

	_, err := counters.Put(currentApp.Namespace(), &counter.Counter{
		Count:       7,
		Name:        "signups",
		PeriodType:  counter.PeriodDay,
		PeriodScope: counter.Scope(counter.PeriodDay, period),
	})
	if err != nil {
		t.Fatal(err)
	}

	count, err := get(currentApp, "signups", counter.PeriodDay, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(7); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	keyID := counter.KeyID("signups", counter.PeriodDay, period)

	cached, err := caches.Get(currentApp.Namespace(), keyID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := cached, int64(7); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterGetUnknown(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		get        = CounterGet(caches, counters)
	)

	_, err := get(currentApp, "signups", counter.PeriodDay, testPeriod())

	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterIncrBatchSize(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		flush      = CounterFlush(caches, counters)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{counter.PeriodAll}
	)

	for i := 0; i < 4; i++ {
		err := incr(currentApp, "signups", period, types, 1, 5)
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := src.Consume(); !counter.IsEmptySource(err) {
		t.Fatal("want empty source")
	}

	err := incr(currentApp, "signups", period, types, 1, 5)
	if err != nil {
		t.Fatal(err)
	}

	task, err := src.Consume()
	if err != nil {
		t.Fatal(err)
	}

	if have, want := task.PeriodType, counter.PeriodAll; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := flush(currentApp, "signups", counter.PeriodAll, period); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		err := incr(currentApp, "signups", period, types, 1, 5)
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := src.Consume(); !counter.IsEmptySource(err) {
		t.Fatal("want empty source")
	}

	err = incr(currentApp, "signups", period, types, 1, 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.Consume(); err != nil {
		t.Fatal(err)
	}
}

func TestCounterIncrColdStart(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		get        = CounterGet(caches, counters)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{counter.PeriodDay}
	)

	for i := 0; i < 3; i++ {
		err := incr(currentApp, "signups", period, types, 1, 0)
		if err != nil {
			t.Fatal(err)
		}
	}

	count, err := get(currentApp, "signups", counter.PeriodDay, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(3); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	task, err := src.Consume()
	if err != nil {
		t.Fatal(err)
	}

	if have, want := task.Namespace, currentApp.Namespace(); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := task.Name, "signups"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := task.PeriodType, counter.PeriodDay; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := task.Period, period.UTC().Format(counter.FormatPeriod); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// The writeback claim outlives the first task, further deltas stay
	// local until a flush releases it.
	if _, err := src.Consume(); !counter.IsEmptySource(err) {
		t.Fatal("want empty source")
	}
}

func TestCounterIncrConcurrent(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		flush      = CounterFlush(caches, counters)
		get        = CounterGet(caches, counters)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{counter.PeriodAll}
	)

	// Serial first delta so the concurrent writers find a warm cache.
	err := incr(currentApp, "signups", period, types, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup

	for i := 0; i < 63; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := incr(currentApp, "signups", period, types, 1, 0); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	count, err := get(currentApp, "signups", counter.PeriodAll, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(64); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	c, err := flush(currentApp, "signups", counter.PeriodAll, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Count, int64(64); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterIncrDefaults(t *testing.T) {
	var (
		caches   = cache.MemCountService()
		counters = counter.MemService()
		src      = counter.MemSource()
		get      = CounterGet(caches, counters)
		incr     = CounterIncr(caches, counters, src)
	)

	err := incr(nil, "signups", time.Time{}, nil, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	count, err := get(nil, "signups", counter.PeriodAll, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	task, err := src.Consume()
	if err != nil {
		t.Fatal(err)
	}

	if have, want := task.Namespace, app.NamespaceDefault; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := task.PeriodType, counter.PeriodAll; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterIncrInvalidName(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		incr       = CounterIncr(caches, counters, src)
	)

	for _, name := range []string{
		"",
		"sign|ups",
	} {
		err := incr(
			currentApp,
			name,
			testPeriod(),
			[]counter.PeriodType{counter.PeriodAll},
			1,
			0,
		)

		if have, want := err, counter.ErrInvalidCounter; !counter.IsInvalidCounter(have) {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func TestCounterIncrMultiPeriods(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		get        = CounterGet(caches, counters)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{
			counter.PeriodDay,
			counter.PeriodWeek,
			counter.PeriodAll,
		}
	)

	err := incr(currentApp, "signups", period, types, 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, periodType := range types {
		count, err := get(currentApp, "signups", periodType, period)
		if err != nil {
			t.Fatal(err)
		}

		if have, want := count, int64(2); have != want {
			t.Errorf("%s: have %v, want %v", periodType, have, want)
		}
	}

	seen := map[counter.PeriodType]bool{}

	for i := 0; i < len(types); i++ {
		task, err := src.Consume()
		if err != nil {
			t.Fatal(err)
		}

		seen[task.PeriodType] = true
	}

	if have, want := len(seen), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := src.Consume(); !counter.IsEmptySource(err) {
		t.Fatal("want empty source")
	}
}

func TestCounterIncrNamespaceIsolation(t *testing.T) {
	var (
		appOne   = testSetupCounter()
		appTwo   = testSetupCounter()
		caches   = cache.MemCountService()
		counters = counter.MemService()
		src      = counter.MemSource()
		get      = CounterGet(caches, counters)
		incr     = CounterIncr(caches, counters, src)
		period   = testPeriod()
		types    = []counter.PeriodType{counter.PeriodAll}
	)

	err := incr(appOne, "signups", period, types, 3, 0)
	if err != nil {
		t.Fatal(err)
	}

	err = incr(appTwo, "signups", period, types, 5, 0)
	if err != nil {
		t.Fatal(err)
	}

	count, err := get(appOne, "signups", counter.PeriodAll, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(3); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	count, err = get(appTwo, "signups", counter.PeriodAll, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(5); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCounterIncrSeedsFromStore(t *testing.T) {
	var (
		currentApp = testSetupCounter()
		caches     = cache.MemCountService()
		counters   = counter.MemService()
		src        = counter.MemSource()
		flush      = CounterFlush(caches, counters)
		incr       = CounterIncr(caches, counters, src)
		period     = testPeriod()
		types      = []counter.PeriodType{counter.PeriodDay}
	)

	_, err := counters.Put(currentApp.Namespace(), &counter.Counter{
		Count:       40,
		Name:        "signups",
		PeriodType:  counter.PeriodDay,
		PeriodScope: counter.Scope(counter.PeriodDay, period),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = incr(currentApp, "signups", period, types, 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	c, err := flush(currentApp, "signups", counter.PeriodDay, period)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Count, int64(42); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	stored, err := counters.Get(
		currentApp.Namespace(),
		"signups",
		counter.PeriodDay,
		counter.Scope(counter.PeriodDay, period),
	)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := stored.Count, int64(42); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testPeriod() time.Time {
	return time.Date(2016, 3, 2, 13, 14, 15, 0, time.UTC)
}

func testSetupCounter() *app.App {
	return &app.App{
		ID:    uint64(rand.Int63()),
		OrgID: uint64(rand.Int63()),
	}
}
