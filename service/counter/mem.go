package counter

import (
	"strconv"
	"sync"
	"time"

	"github.com/tallier/tallier/platform/flake"
)

type memService struct {
	mu       sync.Mutex
	counters map[string]map[string]*Counter
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		counters: map[string]map[string]*Counter{},
	}
}

func (s *memService) Get(
	ns, name string,
	periodType PeriodType,
	periodScope string,
) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.bucket(ns)[memKey(name, periodType, periodScope)]
	if !ok {
		return nil, wrapError(ErrNotFound, "%s%s%s%s%s", name, KeySeparator, periodType, KeySeparator, periodScope)
	}

	return copyCounter(c), nil
}

func (s *memService) Put(ns string, input *Counter) (*Counter, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := copyCounter(input)
	s.bucket(ns)[memKey(c.Name, c.PeriodType, c.PeriodScope)] = c

	return copyCounter(c), nil
}

func (s *memService) Setup(ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bucket(ns)

	return nil
}

func (s *memService) Teardown(ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, ns)

	return nil
}

func (s *memService) bucket(ns string) map[string]*Counter {
	if _, ok := s.counters[ns]; !ok {
		s.counters[ns] = map[string]*Counter{}
	}

	return s.counters[ns]
}

func copyCounter(c *Counter) *Counter {
	old := *c
	return &old
}

func memKey(name string, t PeriodType, scope string) string {
	return name + KeySeparator + string(t) + KeySeparator + scope
}

const memQueueCap = 1024

type memSource struct {
	tasks chan *FlushTask
}

// MemSource returns a channel backed Source implementation.
func MemSource() Source {
	return &memSource{
		tasks: make(chan *FlushTask, memQueueCap),
	}
}

func (s *memSource) Ack(id string) error {
	return nil
}

func (s *memSource) Consume() (*FlushTask, error) {
	select {
	case task := <-s.tasks:
		return task, nil
	default:
		return nil, ErrEmptySource
	}
}

func (s *memSource) Propagate(
	ns, name string,
	periodType PeriodType,
	period string,
) (string, error) {
	id, err := flake.NextID(flakeNamespace(ns))
	if err != nil {
		return "", err
	}

	task := &FlushTask{
		AckID:      strconv.FormatUint(id, 10),
		ID:         strconv.FormatUint(id, 10),
		Name:       name,
		Namespace:  ns,
		Period:     period,
		PeriodType: periodType,
		SentAt:     time.Now(),
	}

	select {
	case s.tasks <- task:
		return task.ID, nil
	default:
		return "", wrapError(ErrSourceSaturated, "%d tasks queued", len(s.tasks))
	}
}

func flakeNamespace(ns string) string {
	return ns + "_counters"
}
