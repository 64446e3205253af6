package lru

import "testing"

func keysInOrder[K comparable, V any](r *Repository[K, V]) []K {
	var out []K
	r.Every(func(key K, _ V) { out = append(out, key) })
	return out
}

func TestAddEvictsOldest(t *testing.T) {
	r := New[string, int](2, true)

	if _, _, ev := r.Add("a", 1); ev {
		t.Fatal("unexpected eviction")
	}
	r.Add("b", 2)

	k, v, ev := r.Add("c", 3)
	if !ev || k != "a" || v != 1 {
		t.Fatalf("evicted (%v, %v, %v), want (a, 1, true)", k, v, ev)
	}
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if r.Has("a") {
		t.Fatal("evicted key still present")
	}
}

func TestGetBumpsRecency(t *testing.T) {
	r := New[string, int](2, true)
	r.Add("a", 1)
	r.Add("b", 2)

	if v, ok := r.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	// "b" is now the oldest
	k, _, ev := r.Add("c", 3)
	if !ev || k != "b" {
		t.Fatalf("evicted %v, want b", k)
	}
}

func TestGetNoAdjustKeepsOrder(t *testing.T) {
	r := New[string, int](2, true)
	r.Add("a", 1)
	r.Add("b", 2)
	r.GetNoAdjust("a")

	k, _, ev := r.Add("c", 3)
	if !ev || k != "a" {
		t.Fatalf("evicted %v, want a", k)
	}
}

func TestAddExistingKeyIsNoop(t *testing.T) {
	r := New[string, int](2, true)
	r.Add("a", 1)
	if _, _, ev := r.Add("a", 99); ev {
		t.Fatal("unexpected eviction")
	}
	if v, _ := r.Get("a"); v != 1 {
		t.Fatalf("value = %d, want original 1", v)
	}
}

func TestBoundedZeroRejectsInserts(t *testing.T) {
	r := New[string, int](0, true)
	r.Add("a", 1)
	r.AddNoAdjust("b", 2)
	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
}

func TestUnboundedNeverEvicts(t *testing.T) {
	r := New[int, int](0, false)
	for i := 0; i < 100; i++ {
		r.AddNoAdjust(i, i)
	}
	if r.Len() != 100 {
		t.Fatalf("len = %d, want 100", r.Len())
	}
}

func TestRemove(t *testing.T) {
	r := New[string, int](3, true)
	r.Add("a", 1)
	r.Add("b", 2)

	v, ok := r.Remove("a")
	if !ok || v != 1 {
		t.Fatalf("Remove(a) = %v, %v", v, ok)
	}
	if _, ok := r.Remove("a"); ok {
		t.Fatal("second Remove succeeded")
	}
	if got := keysInOrder(r); len(got) != 1 || got[0] != "b" {
		t.Fatalf("order = %v, want [b]", got)
	}
}

// Removal after full must reopen a slot instead of reusing forever.
func TestRemoveClearsFull(t *testing.T) {
	r := New[string, int](2, true)
	r.Add("a", 1)
	r.Add("b", 2)
	r.Remove("a")

	if _, _, ev := r.Add("c", 3); ev {
		t.Fatal("eviction despite a free slot")
	}
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
}

func TestFilter(t *testing.T) {
	r := New[int, int](10, true)
	for i := 0; i < 6; i++ {
		r.Add(i, i)
	}

	removed := r.Filter(func(_ int, v int) bool { return v%2 == 0 })
	if len(removed) != 3 {
		t.Fatalf("removed %d entries, want 3", len(removed))
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}
	for _, v := range removed {
		if v%2 == 0 {
			t.Fatalf("kept value %d was removed", v)
		}
	}
}

func TestClear(t *testing.T) {
	r := New[string, int](2, true)
	r.Add("a", 1)
	r.Add("b", 2)
	r.Clear()

	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
	if _, _, ev := r.Add("c", 3); ev {
		t.Fatal("eviction right after clear")
	}
}

func TestEveryOrderIsLRUToMRU(t *testing.T) {
	r := New[string, int](3, true)
	r.Add("a", 1)
	r.Add("b", 2)
	r.Add("c", 3)
	r.Get("a") // bump

	got := keysInOrder(r)
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
