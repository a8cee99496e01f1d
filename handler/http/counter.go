package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/context"

	"github.com/tallier/tallier/core"
	"github.com/tallier/tallier/service/counter"
)

// CounterDecr lowers the counts of the addressed counter buckets.
func CounterDecr(fn core.CounterDecrFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentApp := appFromContext(ctx)

		name, err := extractCounterName(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		p, err := decodeCounterUpdate(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(
			currentApp,
			name,
			p.period,
			p.periodTypes,
			p.delta,
			p.BatchSize,
		)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// CounterGet returns the count of a single counter bucket.
func CounterGet(fn core.CounterGetFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentApp := appFromContext(ctx)

		name, err := extractCounterName(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		periodType, err := extractPeriodType(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		period, err := extractPeriod(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		count, err := fn(currentApp, name, periodType, period)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadCounter{Count: count})
	}
}

// CounterIncr raises the counts of the addressed counter buckets.
func CounterIncr(fn core.CounterIncrFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		currentApp := appFromContext(ctx)

		name, err := extractCounterName(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		p, err := decodeCounterUpdate(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(
			currentApp,
			name,
			p.period,
			p.periodTypes,
			p.delta,
			p.BatchSize,
		)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

type payloadCounter struct {
	Count int64 `json:"count"`
}

type payloadCounterUpdate struct {
	BatchSize   int64    `json:"batch_size"`
	Delta       *int64   `json:"delta"`
	Period      string   `json:"period"`
	PeriodTypes []string `json:"period_types"`

	delta       int64
	period      time.Time
	periodTypes []counter.PeriodType
}

// decodeCounterUpdate parses the request payload of count mutations. Every
// field is optional, an empty body addresses the all-time bucket with a
// delta of one.
func decodeCounterUpdate(r *http.Request) (*payloadCounterUpdate, error) {
	p := payloadCounterUpdate{}

	err := json.NewDecoder(r.Body).Decode(&p)
	if err != nil && err != io.EOF {
		return nil, err
	}

	p.delta = 1

	if p.Delta != nil {
		p.delta = *p.Delta
	}

	if p.Period != "" {
		period, err := counter.ParsePeriod(p.Period)
		if err != nil {
			return nil, err
		}

		p.period = period
	}

	for _, t := range p.PeriodTypes {
		periodType := counter.PeriodType(t)

		if !periodType.Valid() {
			return nil, fmt.Errorf("period type '%s' not supported", t)
		}

		p.periodTypes = append(p.periodTypes, periodType)
	}

	return &p, nil
}
