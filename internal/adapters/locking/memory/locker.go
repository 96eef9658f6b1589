package memory

import (
	"context"
	"errors"
	"sync"

	"farm-vet-appointments/internal/ports/locking"
)

// Locker serializa reservas por veterinario dentro de un solo proceso.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocker() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

// Lock espera el turno del vet o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, vetID string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[vetID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[vetID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(vetID, s, false)
		return nil, errors.Join(locking.ErrLockUnavailable, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(vetID, s, true) })
	}, nil
}

func (l *Locker) release(vetID string, s *slot, held bool) {
	if held {
		<-s.ch
	}
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, vetID)
	}
	l.mu.Unlock()
}
