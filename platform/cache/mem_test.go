package cache

import "testing"

func TestMemCountServiceAdd(t *testing.T) {
	var (
		key       = "add"
		namespace = "counter"
		s         = MemCountService()
	)

	stored, err := s.Add(namespace, key, 11)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := stored, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	stored, err = s.Add(namespace, key, 23)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := stored, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	count, err := s.Get(namespace, key)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(11); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCountServiceDecr(t *testing.T) {
	var (
		key       = "decr"
		namespace = "counter"
		s         = MemCountService()
	)

	_, err := s.Decr(namespace, key, 1)

	if have, want := IsKeyNotFound(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := s.Add(namespace, key, 3); err != nil {
		t.Fatal(err)
	}

	count, err := s.Decr(namespace, key, 2)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	count, err = s.Decr(namespace, key, 5)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(0); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCountServiceDel(t *testing.T) {
	var (
		key       = "del"
		namespace = "counter"
		s         = MemCountService()
	)

	if err := s.Del(namespace, key); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Add(namespace, key, 7); err != nil {
		t.Fatal(err)
	}

	if err := s.Del(namespace, key); err != nil {
		t.Fatal(err)
	}

	_, err := s.Get(namespace, key)

	if have, want := IsKeyNotFound(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCountServiceGet(t *testing.T) {
	var (
		key       = "get"
		namespace = "counter"
		s         = MemCountService()
	)

	_, err := s.Get(namespace, key)

	if have, want := IsKeyNotFound(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := s.Add(namespace, key, 23); err != nil {
		t.Fatal(err)
	}

	count, err := s.Get(namespace, key)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(23); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = s.Get("other", key)

	if have, want := IsKeyNotFound(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCountServiceIncr(t *testing.T) {
	var (
		key       = "incr"
		namespace = "counter"
		s         = MemCountService()
	)

	_, err := s.Incr(namespace, key, 1)

	if have, want := IsKeyNotFound(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if _, err := s.Add(namespace, key, 0); err != nil {
		t.Fatal(err)
	}

	count, err := s.Incr(namespace, key, 1)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	count, err = s.Incr(namespace, key, 41)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, int64(42); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
