// platform/platform_rp2xxx.go
//go:build rp2040 || rp2350

package platform

import (
	"time"

	"machine"
)

// -----------------------------------------------------------------------------
// Defaults on Raspberry Pi Pico / Pico 2 (RP2 family)
// -----------------------------------------------------------------------------

// DefaultPinFactory maps logical numbers directly to machine.Pin(n).
// This matches Pico/Pico 2 GP numbering.
func DefaultPinFactory() PinFactory { return rp2PinFactory{} }

// DefaultClock counts microseconds since first use and busy-waits by spinning
// on the system timer.
func DefaultClock() Clock { return &rp2Clock{epoch: time.Now()} }

// ---- GPIO implementation (includes IRQ support) ----

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (IRQPin, bool) {
	// Constrain to RP2's user GPIOs (GP0..GP28).
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

type rp2Pin struct {
	p machine.Pin
	n int

	// Retained for UnmaskIRQ; written only by SetIRQ before interrupts are
	// armed, so the handler may read them without synchronisation.
	change  machine.PinChange
	handler func()
}

func (r *rp2Pin) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) error {
	r.p.Set(level)
	return nil
}

func (r *rp2Pin) Get() bool   { return r.p.Get() }
func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) SetIRQ(edge Edge, handler func()) error {
	r.change = toPinChange(edge)
	r.handler = handler
	return r.p.SetInterrupt(r.change, func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	r.handler = nil
	return r.p.SetInterrupt(zero, nil)
}

// MaskIRQ and UnmaskIRQ are called from inside the pin's own handler. That is
// safe on RP2: TinyGo's machine.Pin.SetInterrupt only rewrites the pin's
// PROC0 INTE bits and the callback slot, without touching the NVIC line the
// handler is currently executing on. Masking cannot fail once SetIRQ has
// succeeded, so the error is discarded.
func (r *rp2Pin) MaskIRQ() {
	var zero machine.PinChange
	_ = r.p.SetInterrupt(zero, nil)
}

func (r *rp2Pin) UnmaskIRQ() {
	if r.handler == nil {
		return
	}
	h := r.handler
	_ = r.p.SetInterrupt(r.change, func(machine.Pin) { h() })
}

func toPinChange(e Edge) machine.PinChange {
	switch e {
	case EdgeRising:
		return machine.PinRising
	case EdgeFalling:
		return machine.PinFalling
	case EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}

// ---- Clock ----

type rp2Clock struct {
	epoch time.Time
}

func (c *rp2Clock) Micros() int64 { return time.Since(c.epoch).Microseconds() }

func (c *rp2Clock) DelayMicros(us int64) {
	if us <= 0 {
		return
	}
	d := time.Duration(us) * time.Microsecond
	t0 := time.Now()
	for time.Since(t0) < d {
	}
}
