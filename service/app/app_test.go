package app

import "testing"

func TestAppLimit(t *testing.T) {
	a := &App{}

	if have, want := a.Limit(), int64(limitStaging); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	a.InProduction = true

	if have, want := a.Limit(), int64(limitProduction); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestAppNamespace(t *testing.T) {
	a := &App{
		ID:    7,
		OrgID: 5,
	}

	if have, want := a.Namespace(), "app_5_7"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestAppValidate(t *testing.T) {
	a := &App{}

	err := a.Validate()

	if have, want := IsInvalidApp(err), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	a.Name = "canvas"

	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestFromNamespace(t *testing.T) {
	a, err := FromNamespace("app_5_7")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := a.OrgID, uint64(5); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := a.ID, uint64(7); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := a.Namespace(), "app_5_7"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestFromNamespaceEmpty(t *testing.T) {
	for _, ns := range []string{
		"",
		NamespaceDefault,
	} {
		a, err := FromNamespace(ns)
		if err != nil {
			t.Fatal(err)
		}

		if a != nil {
			t.Errorf("have %v, want nil", a)
		}
	}
}

func TestFromNamespaceInvalid(t *testing.T) {
	for _, ns := range []string{
		"app",
		"app_5",
		"app_05_7",
		"app_5_7_9",
		"app_5_7x",
		"app_x_y",
		"users_5_7",
	} {
		_, err := FromNamespace(ns)

		if have, want := IsInvalidNamespace(err), true; have != want {
			t.Errorf("%s: have %v, want %v", ns, have, want)
		}
	}
}
