// Package eventbits is a small event-group primitive: a set of flag bits a
// producer raises and a consumer blocks on. The producer side is safe to call
// from an interrupt-context handler (atomic OR plus a non-blocking send on a
// coalesced wake channel); the consumer side is an ordinary blocking wait.
package eventbits

import (
	"context"
	"sync/atomic"
)

type Group struct {
	bits atomic.Uint32
	wake chan struct{} // coalesced; waiters must re-check after waking
}

func New() *Group {
	return &Group{wake: make(chan struct{}, 1)}
}

// Set ORs mask into the group and wakes a waiter. Never blocks.
func (g *Group) Set(mask uint32) {
	if mask == 0 {
		return
	}
	g.bits.Or(mask)
	select {
	case g.wake <- struct{}{}:
	default:
	}
}

// Peek returns the current bits without clearing them.
func (g *Group) Peek() uint32 { return g.bits.Load() }

// Wait blocks until any bit in mask is raised, clears the matched bits and
// returns them. A cancelled context returns ctx.Err with zero bits.
func (g *Group) Wait(ctx context.Context, mask uint32) (uint32, error) {
	for {
		if got := g.take(mask); got != 0 {
			return got, nil
		}
		select {
		case <-g.wake:
			// Coalesced wake-up; loop and re-check.
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (g *Group) take(mask uint32) uint32 {
	for {
		cur := g.bits.Load()
		got := cur & mask
		if got == 0 {
			return 0
		}
		if g.bits.CompareAndSwap(cur, cur&^mask) {
			return got
		}
	}
}
