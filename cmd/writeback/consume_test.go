package main

import (
	"io"
	"testing"
	"time"

	"github.com/go-kit/kit/log"

	"github.com/tallier/tallier/core"
	"github.com/tallier/tallier/platform/cache"
	"github.com/tallier/tallier/service/app"
	"github.com/tallier/tallier/service/counter"
)

func TestConsumeCounter(t *testing.T) {
	var (
		currentApp = &app.App{
			ID:    7,
			OrgID: 5,
		}
		caches   = cache.MemCountService()
		counters = counter.MemService()
		period   = time.Date(2016, 3, 2, 13, 14, 15, 0, time.UTC)
		src      = &testSource{
			tasks: []*counter.FlushTask{
				{
					AckID:      "ack-valid",
					ID:         "1",
					Name:       "signups",
					Namespace:  currentApp.Namespace(),
					Period:     period.Format(counter.FormatPeriod),
					PeriodType: counter.PeriodDay,
				},
				{
					AckID:      "ack-namespace",
					ID:         "2",
					Name:       "signups",
					Namespace:  "app_x_y",
					Period:     period.Format(counter.FormatPeriod),
					PeriodType: counter.PeriodDay,
				},
				{
					AckID:      "ack-period",
					ID:         "3",
					Name:       "signups",
					Namespace:  currentApp.Namespace(),
					Period:     "not-a-period",
					PeriodType: counter.PeriodDay,
				},
				{
					AckID:      "ack-type",
					ID:         "4",
					Name:       "signups",
					Namespace:  currentApp.Namespace(),
					Period:     period.Format(counter.FormatPeriod),
					PeriodType: "fortnight",
				},
				{
					AckID:      "ack-missing",
					ID:         "5",
					Name:       "downloads",
					Namespace:  currentApp.Namespace(),
					Period:     period.Format(counter.FormatPeriod),
					PeriodType: counter.PeriodDay,
				},
			},
		}
	)

	keyID := counter.KeyID("signups", counter.PeriodDay, period)

	if _, err := caches.Add(currentApp.Namespace(), keyID, 21); err != nil {
		t.Fatal(err)
	}

	err := consumeCounter(
		src,
		core.CounterFlush(caches, counters),
		log.NewNopLogger(),
	)

	if have, want := err, io.EOF; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := len(src.acked), 5; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	c, err := counters.Get(
		currentApp.Namespace(),
		"signups",
		counter.PeriodDay,
		counter.Scope(counter.PeriodDay, period),
	)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Count, int64(21); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestConsumeCounterLeavesFailedUnacked(t *testing.T) {
	var (
		currentApp = &app.App{
			ID:    7,
			OrgID: 5,
		}
		caches = cache.MemCountService()
		period = time.Date(2016, 3, 2, 13, 14, 15, 0, time.UTC)
		src    = &testSource{
			tasks: []*counter.FlushTask{
				{
					AckID:      "ack-failed",
					ID:         "1",
					Name:       "signups",
					Namespace:  currentApp.Namespace(),
					Period:     period.Format(counter.FormatPeriod),
					PeriodType: counter.PeriodDay,
				},
			},
		}
	)

	keyID := counter.KeyID("signups", counter.PeriodDay, period)

	if _, err := caches.Add(currentApp.Namespace(), keyID, 21); err != nil {
		t.Fatal(err)
	}

	err := consumeCounter(
		src,
		func(
			currentApp *app.App,
			name string,
			periodType counter.PeriodType,
			period time.Time,
		) (*counter.Counter, error) {
			return nil, io.ErrUnexpectedEOF
		},
		log.NewNopLogger(),
	)

	if have, want := err, io.EOF; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := len(src.acked), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

type testSource struct {
	counter.Source

	acked []string
	tasks []*counter.FlushTask
}

func (s *testSource) Ack(id string) error {
	s.acked = append(s.acked, id)

	return nil
}

func (s *testSource) Consume() (*counter.FlushTask, error) {
	if len(s.tasks) == 0 {
		return nil, io.EOF
	}

	task := s.tasks[0]
	s.tasks = s.tasks[1:]

	return task, nil
}
