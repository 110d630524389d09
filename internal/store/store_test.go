package store

import (
	"sync"
	"testing"
)

func TestMemoryAssignsIDsFromOne(t *testing.T) {
	m := NewMemory[string]()
	if id := m.Create("a"); id != 1 {
		t.Fatalf("first id = %d, want 1", id)
	}
	if id := m.Create("b"); id != 2 {
		t.Fatalf("second id = %d, want 2", id)
	}
}

func TestMemoryGetAndDelete(t *testing.T) {
	m := NewMemory[string]()
	id := m.Create("hello")

	e, ok := m.Get(id)
	if !ok || e.Value != "hello" || e.ID != id {
		t.Fatalf("Get(%d) = %+v, %v", id, e, ok)
	}

	m.Delete(id)
	if _, ok := m.Get(id); ok {
		t.Fatalf("entity %d still present after delete", id)
	}

	// Deleting again must be a no-op.
	m.Delete(id)
}

func TestMemoryIDsNeverReused(t *testing.T) {
	m := NewMemory[string]()
	first := m.Create("a")
	m.Delete(first)
	second := m.Create("b")
	if second == first {
		t.Fatalf("id %d was reused", first)
	}
}

func TestMemoryListOrderedByID(t *testing.T) {
	m := NewMemory[string]()
	for _, v := range []string{"a", "b", "c"} {
		m.Create(v)
	}
	list := m.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, e := range list {
		if e.ID != int64(i+1) {
			t.Fatalf("list[%d].ID = %d, want %d", i, e.ID, i+1)
		}
	}
}

func TestMemoryConcurrentCreate(t *testing.T) {
	m := NewMemory[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Create(n)
		}(i)
	}
	wg.Wait()
	if got := len(m.List()); got != 50 {
		t.Fatalf("len = %d, want 50", got)
	}
}
