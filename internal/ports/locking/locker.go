package locking

import (
	"context"
	"errors"
)

// ErrLockUnavailable se devuelve cuando no se pudo tomar el lock a tiempo.
var ErrLockUnavailable = errors.New("booking lock unavailable")

// VetLocker serializa reservas y reprogramaciones por veterinario.
// unlock debe llamarse siempre; es seguro llamarlo más de una vez.
type VetLocker interface {
	Lock(ctx context.Context, vetID string) (unlock func(), err error)
}
