package locks

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_MutualExclusion(t *testing.T) {
	reg := NewRegistry(time.Second)

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := reg.Acquire("order-1")
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50 (lost update)", counter)
	}
}

func TestRegistry_TimeoutWhileHeld(t *testing.T) {
	reg := NewRegistry(50 * time.Millisecond)

	release, err := reg.Acquire("order-1")
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	start := time.Now()
	_, err = reg.Acquire("order-1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("second Acquire error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("returned after %v, before the timeout", elapsed)
	}

	release()
	release2, err := reg.Acquire("order-1")
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	release2()
}

func TestRegistry_IndependentKeys(t *testing.T) {
	reg := NewRegistry(50 * time.Millisecond)

	release1, err := reg.Acquire("order-1")
	if err != nil {
		t.Fatalf("Acquire order-1 failed: %v", err)
	}
	defer release1()

	// A different order must not contend.
	release2, err := reg.Acquire("order-2")
	if err != nil {
		t.Fatalf("Acquire order-2 failed: %v", err)
	}
	release2()
}

func TestRegistry_CleansUpIdleEntries(t *testing.T) {
	reg := NewRegistry(time.Second)

	release, err := reg.Acquire("order-1")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	release()

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.entries) != 0 {
		t.Errorf("entries = %d, want 0 after release", len(reg.entries))
	}
}
