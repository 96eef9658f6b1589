package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"farm-vet-appointments/internal/ports/locking"
)

func TestLocker_SerializesSameVet(t *testing.T) {
	l := NewLocker()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "vet-1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most 1 holder at a time, saw %d", maxInside)
	}
	if len(l.slots) != 0 {
		t.Fatalf("expected lock table to be empty, got %d entries", len(l.slots))
	}
}

func TestLocker_DifferentVetsIndependent(t *testing.T) {
	l := NewLocker()

	unlock1, err := l.Lock(context.Background(), "vet-1")
	if err != nil {
		t.Fatalf("Lock vet-1: %v", err)
	}
	defer unlock1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock2, err := l.Lock(ctx, "vet-2")
	if err != nil {
		t.Fatalf("Lock vet-2 should not wait on vet-1: %v", err)
	}
	unlock2()
}

func TestLocker_ContextCancelled(t *testing.T) {
	l := NewLocker()

	unlock, err := l.Lock(context.Background(), "vet-1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "vet-1")
	if !errors.Is(err, locking.ErrLockUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrLockUnavailable wrapping deadline, got %v", err)
	}

	unlock()
	unlock() // doble unlock es no-op

	again, err := l.Lock(context.Background(), "vet-1")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	again()
}
