package cache

import "sync"

type memCountService struct {
	mu     sync.Mutex
	spaces map[string]map[string]int64
}

// MemCountService keeps counts in memory.
func MemCountService() CountService {
	return &memCountService{
		spaces: map[string]map[string]int64{},
	}
}

func (s *memCountService) Add(ns, key string, value int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(ns)

	if _, ok := bucket[key]; ok {
		return false, nil
	}

	bucket[key] = value

	return true, nil
}

func (s *memCountService) Decr(ns, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(ns)

	count, ok := bucket[key]
	if !ok {
		return 0, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	count -= delta
	if count < 0 {
		count = 0
	}

	bucket[key] = count

	return count, nil
}

func (s *memCountService) Del(ns, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bucket(ns), key)

	return nil
}

func (s *memCountService) Get(ns, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, ok := s.bucket(ns)[key]
	if !ok {
		return 0, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	return count, nil
}

func (s *memCountService) Incr(ns, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(ns)

	count, ok := bucket[key]
	if !ok {
		return 0, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	count += delta

	bucket[key] = count

	return count, nil
}

func (s *memCountService) bucket(ns string) map[string]int64 {
	if _, ok := s.spaces[ns]; !ok {
		s.spaces[ns] = map[string]int64{}
	}

	return s.spaces[ns]
}
