package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vstore/pkg/store"
)

func TestBindMap(t *testing.T) {
	s := store.New(false)
	acts := Bind[bool, Map](s, func(unwrap func() bool, publish func(bool)) Map {
		return Map{
			"toggle": func(...any) { publish(!unwrap()) },
			"set": func(args ...any) {
				if len(args) == 1 {
					if v, ok := args[0].(bool); ok {
						publish(v)
					}
				}
			},
		}
	})

	if err := acts.Call("toggle"); err != nil {
		t.Fatalf("Call(toggle) = %v", err)
	}
	if !s.Unwrap() {
		t.Error("toggle did not flip the value")
	}
	if err := acts.Call("set", false); err != nil {
		t.Fatalf("Call(set) = %v", err)
	}
	if s.Unwrap() {
		t.Error("set(false) did not publish")
	}

	err := acts.Call("missing")
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Call(missing) = %v, want ErrUnknownAction", err)
	}

	if diff := cmp.Diff([]string{"set", "toggle"}, acts.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

type counterActions struct {
	Increment func()
	Decrement func()
}

func TestCreateWithStructActions(t *testing.T) {
	counter := Create(0, func(unwrap func() int, publish func(int)) counterActions {
		return counterActions{
			Increment: func() { publish(unwrap() + 1) },
			Decrement: func() { publish(unwrap() - 1) },
		}
	}, store.WithName("counter"))

	var seen []int
	counter.Subscribe(func(n int) { seen = append(seen, n) })

	counter.Actions.Increment()
	counter.Actions.Increment()
	counter.Actions.Decrement()

	if counter.Unwrap() != 1 {
		t.Errorf("Unwrap() = %d, want 1", counter.Unwrap())
	}
	if diff := cmp.Diff([]int{0, 1, 2, 1}, seen); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}
	if counter.Name() != "counter" {
		t.Errorf("Name() = %q, want counter", counter.Name())
	}
}

func TestActionsRespectClose(t *testing.T) {
	counter := Create(5, func(unwrap func() int, publish func(int)) Map {
		return Map{"inc": func(...any) { publish(unwrap() + 1) }}
	})
	counter.Close()
	_ = counter.Actions.Call("inc")
	if counter.Unwrap() != 5 {
		t.Errorf("Unwrap() = %d, want 5", counter.Unwrap())
	}
}

func TestCreateAsync(t *testing.T) {
	b := CreateAsync(context.Background(), func(ctx context.Context) (int, error) {
		return 41, nil
	}, func(unwrap func() int, publish func(int)) Map {
		return Map{"inc": func(...any) { publish(unwrap() + 1) }}
	})

	if err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	if err := b.Actions.Call("inc"); err != nil {
		t.Fatal(err)
	}
	if b.Unwrap() != 42 {
		t.Errorf("Unwrap() = %d, want 42", b.Unwrap())
	}
}

func TestToggle(t *testing.T) {
	s := store.New(false)
	light := NewToggle(s)

	light.Toggle()
	if !light.Value() {
		t.Error("Toggle() should switch on")
	}
	light.Toggle()
	if light.Value() {
		t.Error("Toggle() should switch off")
	}
	light.On()
	if !s.Unwrap() {
		t.Error("On() should publish true")
	}
	light.Off()
	if s.Unwrap() {
		t.Error("Off() should publish false")
	}
}

func TestToggleDrivesComputed(t *testing.T) {
	dark := store.New(false)
	system := store.New(false)
	lightMode := store.Computed2(dark, system, func(d, s bool) bool { return !d && !s })

	NewToggle(dark).Toggle()
	if lightMode.Unwrap() {
		t.Error("lightMode should be false after toggling dark mode")
	}
}

func TestCounter(t *testing.T) {
	s := store.New(10)
	c := NewCounter[int](s)

	c.Increment()
	c.Increment()
	c.Decrement()
	c.Add(5)
	if c.Value() != 16 {
		t.Errorf("Value() = %d, want 16", c.Value())
	}
	c.Reset()
	if s.Unwrap() != 10 {
		t.Errorf("after Reset: %d, want 10", s.Unwrap())
	}

	f := NewCounter[float64](store.New(0.5))
	f.Add(0.25)
	if f.Value() != 0.75 {
		t.Errorf("float Value() = %v, want 0.75", f.Value())
	}
}

func TestList(t *testing.T) {
	s := store.New([]string{"a"})
	l := NewList[string](s)

	var snapshots [][]string
	s.Subscribe(func(v []string) { snapshots = append(snapshots, v) })

	l.Append("b", "c")
	if !l.RemoveAt(0) {
		t.Fatal("RemoveAt(0) = false")
	}
	if l.RemoveAt(5) {
		t.Error("RemoveAt(5) should report false")
	}
	if diff := cmp.Diff([]string{"b", "c"}, l.Items()); diff != "" {
		t.Errorf("Items() mismatch (-want +got):\n%s", diff)
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() = %d after Clear", l.Len())
	}

	want := [][]string{{"a"}, {"a", "b", "c"}, {"b", "c"}, {}}
	if diff := cmp.Diff(want, snapshots); diff != "" {
		t.Errorf("published snapshots mismatch (-want +got):\n%s", diff)
	}
}
