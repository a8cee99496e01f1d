package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tallier/tallier/service/counter"
)

const (
	keyCounterName = "counterName"
	keyPeriod      = "period"
	keyPeriodType  = "periodType"
)

func extractCounterName(r *http.Request) (string, error) {
	name := mux.Vars(r)[keyCounterName]

	if name == "" {
		return "", fmt.Errorf("counter name missing")
	}

	return name, nil
}

func extractPeriod(r *http.Request) (time.Time, error) {
	param := r.URL.Query().Get(keyPeriod)

	if param == "" {
		return time.Time{}, nil
	}

	return counter.ParsePeriod(param)
}

func extractPeriodType(r *http.Request) (counter.PeriodType, error) {
	param := r.URL.Query().Get(keyPeriodType)

	if param == "" {
		return counter.PeriodAll, nil
	}

	periodType := counter.PeriodType(param)

	if !periodType.Valid() {
		return "", fmt.Errorf("period type '%s' not supported", param)
	}

	return periodType, nil
}
