package cache

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type key struct {
	text string
}

func trimEqual(a, b key) bool {
	return strings.TrimSpace(a.text) == strings.TrimSpace(b.text)
}

func TestQueryStructuralEqualityByDefault(t *testing.T) {
	t.Parallel()

	q := New[key, int]()
	q.Set(key{"Inception"}, 1, time.Hour)

	if got, ok := q.Get(key{"Inception"}); !ok || got != 1 {
		t.Errorf("Get(Inception) = %d, %v; want 1, true", got, ok)
	}
	if q.Has(key{"  Inception  "}) {
		t.Error("Has(padded) = true without a comparator, want false")
	}
}

func TestQueryCustomComparator(t *testing.T) {
	t.Parallel()

	q := New[key, string]()
	q.SetCompare(trimEqual)

	q.Set(key{"  Inception  "}, "first", time.Hour)
	if got, ok := q.Get(key{"Inception"}); !ok || got != "first" {
		t.Fatalf("Get(Inception) = %q, %v; want first, true", got, ok)
	}

	// Equivalent key replaces rather than appends.
	q.Set(key{"Inception "}, "second", time.Hour)
	if q.Len() != 1 {
		t.Errorf("Len() = %d after equivalent Set, want 1", q.Len())
	}
	if got, _ := q.Get(key{" Inception"}); got != "second" {
		t.Errorf("Get() = %q, want second", got)
	}

	// Comparison stays case sensitive.
	if q.Has(key{"inception"}) {
		t.Error("Has(lowercase) = true, want false")
	}
}

func TestQueryExpiry(t *testing.T) {
	t.Parallel()

	q := New[key, int]()
	q.Set(key{"short"}, 1, 20*time.Millisecond)
	q.Set(key{"long"}, 2, time.Hour)

	if !q.Has(key{"short"}) {
		t.Fatal("Has(short) = false before expiry, want true")
	}

	time.Sleep(50 * time.Millisecond)

	if q.Has(key{"short"}) {
		t.Error("Has(short) = true after expiry, want false")
	}
	if _, ok := q.Get(key{"short"}); ok {
		t.Error("Get(short) ok = true after expiry, want false")
	}
	if got, ok := q.Get(key{"long"}); !ok || got != 2 {
		t.Errorf("Get(long) = %d, %v; want 2, true", got, ok)
	}

	// An expired key can be stored again.
	q.Set(key{"short"}, 3, time.Hour)
	if got, ok := q.Get(key{"short"}); !ok || got != 3 {
		t.Errorf("Get(short) after reset = %d, %v; want 3, true", got, ok)
	}
}

func TestQueryNonPositiveTTLRemoves(t *testing.T) {
	t.Parallel()

	q := New[key, int]()
	q.Set(key{"a"}, 1, time.Hour)
	q.Set(key{"a"}, 2, 0)

	if q.Has(key{"a"}) {
		t.Error("Has(a) = true after zero ttl Set, want false")
	}
}

func TestQueryMissingKey(t *testing.T) {
	t.Parallel()

	q := New[key, []string]()
	got, ok := q.Get(key{"nothing"})
	if ok || got != nil {
		t.Errorf("Get(nothing) = %v, %v; want nil, false", got, ok)
	}
}

func TestQueryConcurrentAccess(t *testing.T) {
	t.Parallel()

	q := New[key, int]()
	q.SetCompare(trimEqual)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Set(key{" same "}, i, time.Hour)
			q.Get(key{"same"})
		}(i)
	}
	wg.Wait()

	if q.Len() != 1 {
		t.Errorf("Len() = %d after concurrent equivalent sets, want 1", q.Len())
	}
}
