package app

import (
	"sort"
	"sync"
	"time"

	"github.com/tallier/tallier/platform/flake"
)

type memService struct {
	mu   sync.Mutex
	apps map[string]map[uint64]*App
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		apps: map[string]map[uint64]*App{},
	}
}

func (s *memService) Put(ns string, input *App) (*App, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.bucket(ns)

	now := time.Now().UTC()

	if input.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if input.CreatedAt.IsZero() {
			input.CreatedAt = now
		}

		input.CreatedAt = input.CreatedAt.UTC()
		input.ID = id
	} else {
		keep, ok := bucket[input.ID]
		if !ok {
			return nil, ErrNotFound
		}

		input.CreatedAt = keep.CreatedAt
	}

	input.UpdatedAt = now

	a := copyApp(input)
	bucket[a.ID] = a

	return copyApp(a), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	as := List{}

	for _, a := range s.bucket(ns) {
		if !inQuery(a, opts) {
			continue
		}

		as = append(as, copyApp(a))
	}

	sort.Slice(as, func(i, j int) bool {
		return as[i].CreatedAt.After(as[j].CreatedAt)
	})

	if opts.Limit > 0 && len(as) > opts.Limit {
		as = as[:opts.Limit]
	}

	return as, nil
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

	delete(s.apps, ns)

	return nil
}

func (s *memService) bucket(ns string) map[uint64]*App {
	if _, ok := s.apps[ns]; !ok {
		s.apps[ns] = map[uint64]*App{}
	}

	return s.apps[ns]
}

func copyApp(a *App) *App {
	old := *a
	return &old
}

func flakeNamespace(ns string) string {
	return ns + "_apps"
}

func inQuery(a *App, opts QueryOptions) bool {
	if !opts.Before.IsZero() && !a.CreatedAt.Before(opts.Before) {
		return false
	}

	if len(opts.BackendTokens) > 0 && !inStrings(a.BackendToken, opts.BackendTokens) {
		return false
	}

	if opts.Enabled != nil && a.Enabled != *opts.Enabled {
		return false
	}

	if len(opts.IDs) > 0 && !inIDs(a.ID, opts.IDs) {
		return false
	}

	if opts.InProduction != nil && a.InProduction != *opts.InProduction {
		return false
	}

	if len(opts.OrgIDs) > 0 && !inIDs(a.OrgID, opts.OrgIDs) {
		return false
	}

	if len(opts.PublicIDs) > 0 && !inStrings(a.PublicID, opts.PublicIDs) {
		return false
	}

	if len(opts.Tokens) > 0 && !inStrings(a.Token, opts.Tokens) {
		return false
	}

	return true
}

func inIDs(id uint64, ids []uint64) bool {
	for _, i := range ids {
		if id == i {
			return true
		}
	}

	return false
}

func inStrings(s string, ss []string) bool {
	for _, c := range ss {
		if s == c {
			return true
		}
	}

	return false
}
