// platform/platform_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"softserial-go/x/mathx"
)

// ----------------------------- Clock (host) ----------------------------------

// SimClock is a deterministic microsecond clock for host tests. Every Micros
// read advances the clock by a fixed step, emulating the instruction time a
// busy-wait loop would consume, so spin loops make progress in virtual time.
type SimClock struct {
	mu   sync.Mutex
	now  int64
	step int64
}

// NewSimClock returns a clock starting at zero. step is the advance applied
// per Micros read, coerced to at least 1.
func NewSimClock(step int64) *SimClock {
	return &SimClock{step: mathx.Max(step, 1)}
}

func (c *SimClock) Micros() int64 {
	c.mu.Lock()
	c.now += c.step
	v := c.now
	c.mu.Unlock()
	return v
}

func (c *SimClock) DelayMicros(us int64) {
	if us <= 0 {
		return
	}
	c.mu.Lock()
	c.now += us
	c.mu.Unlock()
}

// Now reads the clock without advancing it.
func (c *SimClock) Now() int64 {
	c.mu.Lock()
	v := c.now
	c.mu.Unlock()
	return v
}

// Set jumps the clock to t. Tests use it to position replayed edges.
func (c *SimClock) Set(t int64) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// DefaultClock provides a host clock with a 1 µs read step.
func DefaultClock() Clock { return NewSimClock(1) }

// ----------------------------- Waveform --------------------------------------

// Transition is one recorded level change.
type Transition struct {
	T     int64 // µs
	Level bool
}

// Waveform is a recorded logic trace. The line idles high before the first
// transition, matching an 8N1 serial line at rest.
type Waveform struct {
	mu  sync.Mutex
	trs []Transition
}

func (w *Waveform) record(t int64, level bool) {
	w.mu.Lock()
	if n := len(w.trs); n == 0 || w.trs[n-1].Level != level {
		w.trs = append(w.trs, Transition{T: t, Level: level})
	}
	w.mu.Unlock()
}

// LevelAt returns the line level at time t.
func (w *Waveform) LevelAt(t int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	level := true
	for _, tr := range w.trs {
		if tr.T > t {
			break
		}
		level = tr.Level
	}
	return level
}

// FallingEdges lists the times of high-to-low transitions in order.
func (w *Waveform) FallingEdges() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []int64
	for _, tr := range w.trs {
		if !tr.Level {
			out = append(out, tr.T)
		}
	}
	return out
}

// Transitions returns a copy of the recorded trace.
func (w *Waveform) Transitions() []Transition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Transition(nil), w.trs...)
}

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements IRQPin for host-side tests. Set dispatches a registered
// IRQ handler synchronously when the level change matches the configured edge,
// mirroring the way a real edge interrupt preempts the writer.
//
// Optional wiring for the bit engine tests:
//   - Record/RecClock: level writes are appended to a Waveform with timestamps.
//   - Source/SrcClock: Get reads the level from a Waveform at the current
//     virtual time instead of the stored level.
//   - WriteErr: when set, Set fails with it (transmit abort paths).
type FakePin struct {
	mu      sync.Mutex
	number  int
	level   bool
	modeOut bool
	irqEdge Edge
	irqFunc func()
	masked  bool

	Record   *Waveform
	RecClock *SimClock
	Source   *Waveform
	SrcClock *SimClock
	WriteErr error
}

func (p *FakePin) ConfigureInput(_ Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	rec, clk := p.Record, p.RecClock
	p.mu.Unlock()
	if rec != nil && clk != nil {
		rec.record(clk.Now(), initial)
	}
	return nil
}

func (p *FakePin) Set(level bool) error {
	p.mu.Lock()
	if p.WriteErr != nil {
		err := p.WriteErr
		p.mu.Unlock()
		return err
	}
	old := p.level
	p.level = level
	edge := edgeFrom(old, level)
	irq := p.irqFunc
	want := !p.masked && irqWanted(p.irqEdge, edge)
	rec, clk := p.Record, p.RecClock
	p.mu.Unlock()

	if rec != nil && clk != nil {
		rec.record(clk.Now(), level)
	}
	if want && irq != nil {
		irq() // ISR-style callback, runs in the writer's context
	}
	return nil
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	src, clk := p.Source, p.SrcClock
	v := p.level
	p.mu.Unlock()
	if src != nil && clk != nil {
		return src.LevelAt(clk.Micros())
	}
	return v
}

func (p *FakePin) Number() int { return p.number }

func (p *FakePin) SetIRQ(edge Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.masked = false
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

func (p *FakePin) MaskIRQ() {
	p.mu.Lock()
	p.masked = true
	p.mu.Unlock()
}

func (p *FakePin) UnmaskIRQ() {
	p.mu.Lock()
	p.masked = false
	p.mu.Unlock()
}

// ReplayFalling walks the pin's Source waveform and invokes the registered
// handler once per falling edge, positioning clk at the edge time first.
// Edges the handler's own sampling time has already consumed are skipped,
// which is exactly what a masked interrupt would have discarded. Replays the
// whole waveform; call it once per recording.
func (p *FakePin) ReplayFalling(clk *SimClock) {
	p.mu.Lock()
	src := p.Source
	p.mu.Unlock()
	if src == nil {
		return
	}
	cursor := int64(-1)
	for _, t := range src.FallingEdges() {
		if t <= cursor {
			continue
		}
		clk.Set(t)
		p.mu.Lock()
		h := p.irqFunc
		ok := h != nil && !p.masked
		p.mu.Unlock()
		if ok {
			h()
		}
		cursor = clk.Now()
	}
}

func edgeFrom(old, new bool) Edge {
	switch {
	case !old && new:
		return EdgeRising
	case old && !new:
		return EdgeFalling
	default:
		return EdgeNone
	}
}

func irqWanted(cfg, seen Edge) bool {
	switch cfg {
	case EdgeBoth:
		return seen == EdgeRising || seen == EdgeFalling
	default:
		return cfg == seen
	}
}

// HostPinFactory returns stable *FakePin instances per number.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinFactory) ByNumber(n int) (IRQPin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p, true
}

// Get exposes the underlying *FakePin for tests (e.g. to attach waveforms).
func (f *HostPinFactory) Get(n int) (*FakePin, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	return p, ok
}

// DefaultPinFactory provides a host GPIO factory.
func DefaultPinFactory() PinFactory {
	return &HostPinFactory{pins: make(map[int]*FakePin)}
}
