// softserial/softserial.go

// Package softserial implements an asynchronous serial channel entirely in
// software on a pair of GPIO pins: an edge-triggered receive engine that
// samples 8N1 frames at computed bit centres, and a busy-wait transmitter
// that bit-bangs frames at the same cadence. It is meant for boards whose
// hardware UARTs are already spoken for.
package softserial

import (
	"context"

	"tinygo.org/x/drivers"

	"softserial-go/errcode"
	"softserial-go/pinreg"
	"softserial-go/platform"
	"softserial-go/x/eventbits"
)

// Mode selects the features of a unit.
type Mode uint8

const (
	// RxEnable turns on the interrupt-driven receiver.
	RxEnable Mode = 1 << iota
	// TxEnable turns on the transmitter.
	TxEnable
	// HalfDuplex drives a direction pin around each transmitted frame, for
	// an external RS485-style transceiver.
	HalfDuplex
)

// Config describes one softserial unit.
type Config struct {
	Mode Mode
	Baud uint32 // 1 to 1_000_000

	RXPin  int
	TXPin  int
	DirPin int // meaningful only with HalfDuplex

	// Optional: RxBit is raised on Events whenever a line feed is received,
	// so a task can sleep until a full line is likely buffered.
	Events *eventbits.Group
	RxBit  uint32
}

// Port is one software serial channel. The receive interrupt handler holds a
// reference to it for the port's entire lifetime; do not copy a Port after
// New returns.
type Port struct {
	mode    Mode
	bitTime int64 // µs per bit at the configured baud

	clk platform.Clock
	rx  platform.IRQPin
	tx  platform.Pin
	dir platform.Pin

	buf    ringBuffer
	events *eventbits.Group
	rxBit  uint32
}

// The facade satisfies the tinygo drivers UART contract, so driver packages
// that speak drivers.UART can run over a software port.
var _ drivers.UART = (*Port)(nil)

// New claims the unit's pins in reg, configures them via pins, computes the
// bit timing and arms the falling-edge receive handler. Any failure rolls
// the pin claim back and returns a typed error; a failed unit retains no
// state.
func New(cfg Config, pins platform.PinFactory, clk platform.Clock, reg *pinreg.Registry) (*Port, error) {
	bt, err := bitPeriod(cfg.Baud)
	if err != nil {
		return nil, err
	}

	var out, in pinreg.Mask
	if cfg.Mode&TxEnable != 0 {
		out |= pinreg.Bit(cfg.TXPin)
	}
	if cfg.Mode&HalfDuplex != 0 {
		out |= pinreg.Bit(cfg.DirPin)
	}
	if cfg.Mode&RxEnable != 0 {
		in = pinreg.Bit(cfg.RXPin)
	}
	if err := reg.Claim(out, in); err != nil {
		return nil, err
	}

	fail := func(c errcode.Code, op string, cause error) error {
		reg.Release(out | in)
		if cause == nil {
			return c
		}
		return errcode.Wrap(c, op, cause)
	}

	p := &Port{
		mode:    cfg.Mode,
		bitTime: bt,
		clk:     clk,
		events:  cfg.Events,
		rxBit:   cfg.RxBit,
	}

	if cfg.Mode&TxEnable != 0 {
		tx, ok := pins.ByNumber(cfg.TXPin)
		if !ok {
			return nil, fail(errcode.UnknownPin, "tx", nil)
		}
		// Line idles high between frames.
		if err := tx.ConfigureOutput(true); err != nil {
			return nil, fail(errcode.PinConfigFailed, "tx", err)
		}
		p.tx = tx
	}

	if cfg.Mode&HalfDuplex != 0 {
		dir, ok := pins.ByNumber(cfg.DirPin)
		if !ok {
			return nil, fail(errcode.UnknownPin, "dir", nil)
		}
		// Receive-enabled until a frame goes out.
		if err := dir.ConfigureOutput(false); err != nil {
			return nil, fail(errcode.PinConfigFailed, "dir", err)
		}
		p.dir = dir
	}

	if cfg.Mode&RxEnable != 0 {
		rx, ok := pins.ByNumber(cfg.RXPin)
		if !ok {
			return nil, fail(errcode.UnknownPin, "rx", nil)
		}
		if err := rx.ConfigureInput(platform.PullUp); err != nil {
			return nil, fail(errcode.PinConfigFailed, "rx", err)
		}
		if err := rx.SetIRQ(platform.EdgeFalling, p.handleEdge); err != nil {
			return nil, fail(errcode.IRQSetupFailed, "rx", err)
		}
		p.rx = rx
	}

	return p, nil
}

// BitTime returns the computed bit period in microseconds.
func (p *Port) BitTime() int64 { return p.bitTime }

// Buffered returns the number of received bytes waiting to be read. It never
// blocks.
func (p *Port) Buffered() int { return p.buf.Used() }

// ReadByte pops one byte from the receive buffer, or reports buffer_empty.
func (p *Port) ReadByte() (byte, error) {
	b, ok := p.buf.Get()
	if !ok {
		return 0, errcode.BufferEmpty
	}
	return b, nil
}

// Getc is the polling single-byte read: it returns zero for an empty buffer,
// indistinguishable from a genuine zero byte. Prefer ReadByte.
func (p *Port) Getc() byte {
	b, _ := p.buf.Get()
	return b
}

// Overrun returns and clears the sticky overrun flag. Read and ReadLine
// invoke the same check before draining.
func (p *Port) Overrun() bool { return p.buf.CheckAndClearOverrun() }

// Read drains buffered bytes into dst, at most len(dst). A pending overrun
// surfaces as an error before anything is consumed. n == 0 with a nil error
// means no data now.
func (p *Port) Read(dst []byte) (int, error) { return p.drain(dst, false) }

// ReadLine drains like Read but stops at a line feed, which is consumed and
// discarded. Bytes after the line feed stay buffered for the next call.
func (p *Port) ReadLine(dst []byte) (int, error) { return p.drain(dst, true) }

func (p *Port) drain(dst []byte, stopLF bool) (int, error) {
	if p.buf.CheckAndClearOverrun() {
		return 0, errcode.Overrun
	}
	n := 0
	for n < len(dst) {
		b, ok := p.buf.Get()
		if !ok {
			break
		}
		if stopLF && b == '\n' {
			break
		}
		dst[n] = b
		n++
	}
	return n, nil
}

// WaitLine blocks until the receive engine reports a line feed via the
// configured event group, then returns. Useful before ReadLine.
func (p *Port) WaitLine(ctx context.Context) error {
	if p.mode&RxEnable == 0 || p.events == nil {
		return errcode.RxDisabled
	}
	_, err := p.events.Wait(ctx, p.rxBit)
	return err
}
