package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dataignite-io/nnstreamer/pkg/errors"
)

// fakeExtension stands in for the opaque payloads the subplugin stores hold
type fakeExtension struct {
	ID   int
	Name string
}

func TestNew(t *testing.T) {
	reg := New[fakeExtension]()

	if reg == nil {
		t.Fatal("New() returned nil")
	}

	if reg.Count() != 0 {
		t.Errorf("New registry should be empty, got count %d", reg.Count())
	}
}

func TestRegister(t *testing.T) {
	reg := New[fakeExtension]()

	t.Run("register valid item", func(t *testing.T) {
		err := reg.Register("resize", fakeExtension{ID: 1, Name: "resize"})

		if err != nil {
			t.Fatalf("Register() error = %v, want nil", err)
		}

		if reg.Count() != 1 {
			t.Errorf("Count() = %d, want 1", reg.Count())
		}
	})

	t.Run("register with empty name", func(t *testing.T) {
		err := reg.Register("", fakeExtension{ID: 2})

		if !errors.IsErrorCode(err, errors.ErrInvalidInput) {
			t.Errorf("Register() with empty name should return ErrInvalidInput, got %v", err)
		}
	})

	t.Run("register duplicate keeps existing entry", func(t *testing.T) {
		err := reg.Register("resize", fakeExtension{ID: 3, Name: "impostor"})

		if !errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			t.Errorf("Register() duplicate should return ErrAlreadyExists, got %v", err)
		}

		got, err := reg.Get("resize")
		if err != nil {
			t.Fatalf("Get() error = %v, want nil", err)
		}
		if got.ID != 1 {
			t.Errorf("duplicate registration altered existing entry: got ID %d, want 1", got.ID)
		}
	})
}

func TestGet(t *testing.T) {
	reg := New[fakeExtension]()
	item := fakeExtension{ID: 1, Name: "bmp"}
	_ = reg.Register("bmp", item)

	t.Run("get existing item", func(t *testing.T) {
		got, err := reg.Get("bmp")

		if err != nil {
			t.Fatalf("Get() error = %v, want nil", err)
		}

		if got != item {
			t.Errorf("Get() = %+v, want %+v", got, item)
		}
	})

	t.Run("get non-existing item", func(t *testing.T) {
		_, err := reg.Get("nonexistent")

		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			t.Errorf("Get() non-existing should return ErrNotFound, got %v", err)
		}
	})
}

func TestRemove(t *testing.T) {
	reg := New[fakeExtension]()
	_ = reg.Register("flexbuf", fakeExtension{ID: 1})

	t.Run("remove existing item", func(t *testing.T) {
		err := reg.Remove("flexbuf")

		if err != nil {
			t.Fatalf("Remove() error = %v, want nil", err)
		}

		if _, err := reg.Get("flexbuf"); !errors.IsErrorCode(err, errors.ErrNotFound) {
			t.Errorf("Get() after removal should return ErrNotFound, got %v", err)
		}
	})

	t.Run("remove non-existing item", func(t *testing.T) {
		err := reg.Remove("nonexistent")

		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			t.Errorf("Remove() non-existing should return ErrNotFound, got %v", err)
		}
	})
}

func TestList(t *testing.T) {
	reg := New[fakeExtension]()

	// Register items in non-alphabetical order
	items := []string{"tensorflow", "caffe2", "onnx"}
	for i, name := range items {
		_ = reg.Register(name, fakeExtension{ID: i})
	}

	list := reg.List()
	expected := []string{"caffe2", "onnx", "tensorflow"}

	if len(list) != len(expected) {
		t.Fatalf("List() returned %d items, want %d", len(list), len(expected))
	}

	for i, name := range list {
		if name != expected[i] {
			t.Errorf("List()[%d] = %s, want %s", i, name, expected[i])
		}
	}
}

func TestClear(t *testing.T) {
	reg := New[fakeExtension]()

	for i := 0; i < 5; i++ {
		_ = reg.Register(fmt.Sprintf("sub%d", i), fakeExtension{ID: i})
	}

	if reg.Count() != 5 {
		t.Fatalf("Expected 5 items before clear, got %d", reg.Count())
	}

	reg.Clear()

	if reg.Count() != 0 {
		t.Errorf("Count() after Clear() = %d, want 0", reg.Count())
	}

	if len(reg.List()) != 0 {
		t.Errorf("List() after Clear() should be empty")
	}
}

func TestCount(t *testing.T) {
	reg := New[fakeExtension]()

	for i := 0; i < 3; i++ {
		if reg.Count() != i {
			t.Errorf("Count() = %d, want %d", reg.Count(), i)
		}
		_ = reg.Register(fmt.Sprintf("sub%d", i), fakeExtension{ID: i})
	}
}

func TestConcurrency(t *testing.T) {
	reg := New[fakeExtension]()
	const goroutines = 10
	const itemsPerGoroutine = 100

	// Test concurrent writes
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < itemsPerGoroutine; i++ {
				name := fmt.Sprintf("g%d_sub%d", goroutineID, i)
				if err := reg.Register(name, fakeExtension{ID: goroutineID*1000 + i}); err != nil {
					t.Errorf("Concurrent Register() failed: %v", err)
				}
			}
		}(g)
	}

	wg.Wait()

	if reg.Count() != goroutines*itemsPerGoroutine {
		t.Errorf("Count() = %d, want %d", reg.Count(), goroutines*itemsPerGoroutine)
	}

	// Test concurrent reads alongside removals
	wg.Add(goroutines * 2)
	for g := 0; g < goroutines; g++ {
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < itemsPerGoroutine; i++ {
				name := fmt.Sprintf("g%d_sub%d", goroutineID, i)
				_, _ = reg.Get(name)
			}
		}(g)
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < itemsPerGoroutine; i++ {
				name := fmt.Sprintf("g%d_sub%d", goroutineID, i)
				_ = reg.Remove(name)
			}
		}(g)
	}
	wg.Wait()

	if reg.Count() != 0 {
		t.Errorf("Count() after concurrent removal = %d, want 0", reg.Count())
	}
}
