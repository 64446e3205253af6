package keys

import "testing"

func TestHashDeterministic(t *testing.T) {
	a, err := Hash("user", 42, true)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash("user", 42, true)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a != b {
		t.Fatalf("same args hashed differently: %q vs %q", a, b)
	}
}

func TestHashDistinguishesArgs(t *testing.T) {
	a, _ := Hash("user", 42)
	b, _ := Hash("user", 43)
	if a == b {
		t.Fatalf("different args collided: %q", a)
	}
	c, _ := Hash("user", "42")
	if a == c {
		t.Fatal("int and string argument collided")
	}
}

// Map iteration order must not leak into the key.
func TestHashCanonicalMapOrder(t *testing.T) {
	m1 := map[string]int{"a": 1, "b": 2, "c": 3}
	m2 := map[string]int{"c": 3, "b": 2, "a": 1}

	for _, enc := range []Encoding{Msgpack, JSON, CBOR} {
		var prev string
		for i := 0; i < 20; i++ {
			h1, err := HashWith(enc, m1)
			if err != nil {
				t.Fatalf("HashWith(%v): %v", enc, err)
			}
			h2, err := HashWith(enc, m2)
			if err != nil {
				t.Fatalf("HashWith(%v): %v", enc, err)
			}
			if h1 != h2 {
				t.Fatalf("encoding %v: equal maps hashed differently", enc)
			}
			if prev != "" && h1 != prev {
				t.Fatalf("encoding %v: unstable across runs", enc)
			}
			prev = h1
		}
	}
}
