package cache

import (
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tallier/tallier/platform/metrics"
)

type instrumentCountService struct {
	component string
	errCount  kitmetrics.Counter
	hitCount  kitmetrics.Counter
	next      CountService
	opCount   kitmetrics.Counter
	opLatency *prometheus.HistogramVec
	service   string
	store     string
}

// InstrumentCountServiceMiddleware observes key aspects of CountService
// operations and exposes Prometheus metrics.
func InstrumentCountServiceMiddleware(
	component, service, store string,
	errCount kitmetrics.Counter,
	hitCount kitmetrics.Counter,
	opCount kitmetrics.Counter,
	opLatency *prometheus.HistogramVec,
) CountServiceMiddleware {
	return func(next CountService) CountService {
		return &instrumentCountService{
			component: component,
			errCount:  errCount,
			hitCount:  hitCount,
			next:      next,
			opCount:   opCount,
			opLatency: opLatency,
			service:   service,
			store:     store,
		}
	}
}

func (s *instrumentCountService) Add(ns, key string, value int64) (stored bool, err error) {
	defer func(begin time.Time) {
		s.track("Add", ns, begin, err)
	}(time.Now())

	return s.next.Add(ns, key, value)
}

func (s *instrumentCountService) Decr(ns, key string, delta int64) (count int64, err error) {
	defer func(begin time.Time) {
		if IsKeyNotFound(err) {
			s.track("Decr", ns, begin, nil)
			return
		}

		s.track("Decr", ns, begin, err)
	}(time.Now())

	return s.next.Decr(ns, key, delta)
}

func (s *instrumentCountService) Del(ns, key string) (err error) {
	defer func(begin time.Time) {
		s.track("Del", ns, begin, err)
	}(time.Now())

	return s.next.Del(ns, key)
}

func (s *instrumentCountService) Get(ns, key string) (count int64, err error) {
	defer func(begin time.Time) {
		if err == nil {
			s.trackHit("Get", ns)
		}
		if IsKeyNotFound(err) {
			s.track("Get", ns, begin, nil)
			return
		}

		s.track("Get", ns, begin, err)
	}(time.Now())

	return s.next.Get(ns, key)
}

func (s *instrumentCountService) Incr(ns, key string, delta int64) (count int64, err error) {
	defer func(begin time.Time) {
		if IsKeyNotFound(err) {
			s.track("Incr", ns, begin, nil)
			return
		}

		s.track("Incr", ns, begin, err)
	}(time.Now())

	return s.next.Incr(ns, key, delta)
}

func (s *instrumentCountService) track(
	method, namespace string,
	begin time.Time,
	err error,
) {
	if err != nil {
		s.errCount.With(
			metrics.FieldComponent, s.component,
			metrics.FieldMethod, method,
			metrics.FieldNamespace, namespace,
			metrics.FieldService, s.service,
			metrics.FieldStore, s.store,
		).Add(1)

		return
	}

	s.opCount.With(
		metrics.FieldComponent, s.component,
		metrics.FieldMethod, method,
		metrics.FieldNamespace, namespace,
		metrics.FieldService, s.service,
		metrics.FieldStore, s.store,
	).Add(1)

	s.opLatency.With(prometheus.Labels{
		metrics.FieldComponent: s.component,
		metrics.FieldMethod:    method,
		metrics.FieldNamespace: namespace,
		metrics.FieldService:   s.service,
		metrics.FieldStore:     s.store,
	}).Observe(time.Since(begin).Seconds())
}

func (s *instrumentCountService) trackHit(method, namespace string) {
	s.hitCount.With(
		metrics.FieldComponent, s.component,
		metrics.FieldMethod, method,
		metrics.FieldNamespace, namespace,
		metrics.FieldService, s.service,
		metrics.FieldStore, s.store,
	).Add(1)
}
