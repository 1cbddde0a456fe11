// pinreg/pinreg.go

// Package pinreg tracks which GPIO pins are owned by a softserial unit. The
// registry is an explicit object rather than process state so independent
// registries can exist side by side (one per board, one per test).
package pinreg

import (
	"sync"

	"softserial-go/errcode"
)

// Mask is a pin bitmask, one bit per GPIO number.
type Mask uint64

// Bit returns the mask for pin n. Out-of-range numbers yield the empty mask.
func Bit(n int) Mask {
	if n < 0 || n > 63 {
		return 0
	}
	return Mask(1) << uint(n)
}

// Registry is the process- or test-scoped set of claimed pins.
type Registry struct {
	mu   sync.Mutex
	used Mask
}

func New() *Registry { return &Registry{} }

// Claim validates and then records ownership of the given output and input
// pin sets. A unit's input pin must not be one of its outputs, and neither
// set may intersect pins already claimed. Validation happens before any
// mutation: a rejected claim leaves the registry untouched.
func (r *Registry) Claim(out, in Mask) error {
	if out&in != 0 {
		return errcode.PinConflict
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used&(out|in) != 0 {
		return errcode.PinInUse
	}
	r.used |= out | in
	return nil
}

// Release returns pins to the pool. Used by initialization rollback; a unit
// that failed setup must retain no claim.
func (r *Registry) Release(m Mask) {
	r.mu.Lock()
	r.used &^= m
	r.mu.Unlock()
}

// Claimed reports whether every pin in m is currently claimed.
func (r *Registry) Claimed(m Mask) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return m != 0 && r.used&m == m
}
