// platform/platform.go

// Package platform defines the services the softserial core needs from the
// target: GPIO pins with edge interrupts and a monotonic microsecond clock.
// An MCU implementation backed by the machine package builds under
// rp2040/rp2350; everything else gets host fakes suitable for unit tests.
package platform

// Pull selects the pin's pull resistor state.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// Pin is one GPIO. Set returns an error because a bit-banged transmit frame
// must surface a failed level write to its caller mid-frame.
type Pin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool) error
	Get() bool
	Number() int
}

// IRQPin extends Pin with edge interrupts. SetIRQ installs the interrupt
// service if needed (idempotent) and registers the handler. MaskIRQ and
// UnmaskIRQ gate delivery without dropping the registration; both must be
// callable from inside the handler itself.
type IRQPin interface {
	Pin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
	MaskIRQ()
	UnmaskIRQ()
}

// PinFactory supplies pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (IRQPin, bool)
}

// Clock is a monotonic microsecond counter plus a busy wait. Micros may wrap;
// callers must tolerate observing it go backward.
type Clock interface {
	Micros() int64
	DelayMicros(us int64)
}
