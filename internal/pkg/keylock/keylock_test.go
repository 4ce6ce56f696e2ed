package keylock

import (
	"sync"
	"testing"
)

func TestKeyLock_SerializesPerKey(t *testing.T) {
	kl := New()

	const workers = 20
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("same-key")
			defer kl.Unlock("same-key")
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyLock_DistinctKeysDoNotBlock(t *testing.T) {
	kl := New()

	kl.Lock("a")
	defer kl.Unlock("a")

	done := make(chan struct{})
	go func() {
		kl.Lock("b")
		kl.Unlock("b")
		close(done)
	}()

	<-done
}
