package counter

import (
	"reflect"
	"testing"
)

type prepareFunc func(ns string, t *testing.T) Service

func testServiceGet(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_get"
		service   = p(namespace, t)
	)

	_, err := service.Get(namespace, "visits", PeriodDay, "2016-03-02")

	if have, want := IsNotFound(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	created, err := service.Put(namespace, &Counter{
		Count:       11,
		Name:        "visits",
		PeriodType:  PeriodDay,
		PeriodScope: "2016-03-02",
	})
	if err != nil {
		t.Fatal(err)
	}

	c, err := service.Get(namespace, "visits", PeriodDay, "2016-03-02")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c, created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePut(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_put"
		service   = p(namespace, t)
	)

	for _, c := range []*Counter{
		{Count: 11, Name: "visits", PeriodType: PeriodDay, PeriodScope: "2016-03-02"},
		{Count: 7, Name: "visits", PeriodType: PeriodDay, PeriodScope: "2016-03-03"},
		{Count: 23, Name: "visits", PeriodType: PeriodAll, PeriodScope: ScopeAll},
	} {
		if _, err := service.Put(namespace, c); err != nil {
			t.Fatal(err)
		}
	}

	updated, err := service.Put(namespace, &Counter{
		Count:       42,
		Name:        "visits",
		PeriodType:  PeriodDay,
		PeriodScope: "2016-03-02",
	})
	if err != nil {
		t.Fatal(err)
	}

	c, err := service.Get(namespace, "visits", PeriodDay, "2016-03-02")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c, updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	c, err = service.Get(namespace, "visits", PeriodDay, "2016-03-03")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Count, int64(7); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	c, err = service.Get(namespace, "visits", PeriodAll, ScopeAll)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := c.Count, int64(23); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = service.Put(namespace, &Counter{
		Count:       -1,
		Name:        "visits",
		PeriodType:  PeriodDay,
		PeriodScope: "2016-03-02",
	})

	if have, want := IsInvalidCounter(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
