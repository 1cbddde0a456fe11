package softserial

import (
	"context"
	"testing"
	"time"

	"softserial-go/errcode"
	"softserial-go/pinreg"
	"softserial-go/platform"
	"softserial-go/x/eventbits"
)

func hostDeps() (*platform.HostPinFactory, *platform.SimClock, *pinreg.Registry) {
	return &platform.HostPinFactory{}, platform.NewSimClock(1), pinreg.New()
}

func TestNewRejectsZeroBaud(t *testing.T) {
	pins, clk, reg := hostDeps()
	_, err := New(Config{Mode: RxEnable | TxEnable, Baud: 0, RXPin: 1, TXPin: 2}, pins, clk, reg)
	if errcode.Of(err) != errcode.InvalidBaud {
		t.Fatalf("err=%v, want invalid_baud", err)
	}
	if reg.Claimed(pinreg.Bit(1)) || reg.Claimed(pinreg.Bit(2)) {
		t.Fatal("failed init must not claim pins")
	}
}

func TestNewRejectsSharedRxTxPin(t *testing.T) {
	pins, clk, reg := hostDeps()
	_, err := New(Config{Mode: RxEnable | TxEnable, Baud: 9600, RXPin: 3, TXPin: 3}, pins, clk, reg)
	if errcode.Of(err) != errcode.PinConflict {
		t.Fatalf("err=%v, want pin_conflict", err)
	}
}

func TestNewRejectsSecondInstanceOnSamePins(t *testing.T) {
	pins, clk, reg := hostDeps()
	if _, err := New(Config{Mode: RxEnable | TxEnable, Baud: 9600, RXPin: 1, TXPin: 2}, pins, clk, reg); err != nil {
		t.Fatalf("first instance: %v", err)
	}
	_, err := New(Config{Mode: RxEnable, Baud: 9600, RXPin: 2}, pins, clk, reg)
	if errcode.Of(err) != errcode.PinInUse {
		t.Fatalf("err=%v, want pin_in_use", err)
	}
}

// rangePins wraps the host factory with a bounded pin space, like a real
// board would have.
type rangePins struct {
	inner platform.HostPinFactory
	max   int
}

func (f *rangePins) ByNumber(n int) (platform.IRQPin, bool) {
	if n < 0 || n > f.max {
		return nil, false
	}
	return f.inner.ByNumber(n)
}

func TestNewRollsBackClaimOnUnknownPin(t *testing.T) {
	_, clk, reg := hostDeps()
	pins := &rangePins{max: 16}

	_, err := New(Config{Mode: RxEnable | TxEnable, Baud: 9600, RXPin: 40, TXPin: 2}, pins, clk, reg)
	if errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("err=%v, want unknown_pin", err)
	}
	// The whole claim must have been rolled back, TX pin included.
	if err := reg.Claim(pinreg.Bit(2), pinreg.Bit(5)); err != nil {
		t.Fatalf("pins still claimed after rollback: %v", err)
	}
}

func TestNewConfiguresPinsForIdleLine(t *testing.T) {
	pins, clk, reg := hostDeps()
	p, err := New(Config{
		Mode: RxEnable | TxEnable | HalfDuplex,
		Baud: 9600, RXPin: 1, TXPin: 2, DirPin: 3,
	}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.BitTime() != 104 {
		t.Fatalf("bit time %d, want 104", p.BitTime())
	}
	tx, _ := pins.Get(2)
	if !tx.Get() {
		t.Fatal("TX must idle high")
	}
	dir, _ := pins.Get(3)
	if dir.Get() {
		t.Fatal("direction pin must start receive-enabled (low)")
	}
}

func TestWriteRequiresTxEnable(t *testing.T) {
	pins, clk, reg := hostDeps()
	p, err := New(Config{Mode: RxEnable, Baud: 9600, RXPin: 1}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.WriteByte('x'); errcode.Of(err) != errcode.TxDisabled {
		t.Fatalf("err=%v, want tx_disabled", err)
	}
}

func TestReadByteAndGetcOnEmptyBuffer(t *testing.T) {
	pins, clk, reg := hostDeps()
	p, err := New(Config{Mode: RxEnable, Baud: 9600, RXPin: 1}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.ReadByte(); errcode.Of(err) != errcode.BufferEmpty {
		t.Fatalf("err=%v, want buffer_empty", err)
	}
	if b := p.Getc(); b != 0 {
		t.Fatalf("Getc on empty = %d, want the zero sentinel", b)
	}
}

func TestReadSurfacesOverrunOnceAndConsumesNothing(t *testing.T) {
	pins, clk, reg := hostDeps()
	p, err := New(Config{Mode: RxEnable, Baud: 9600, RXPin: 1}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i <= rxBufferSize; i++ { // one more than fits
		p.buf.Put(byte(i))
	}
	buf := make([]byte, 8)
	if _, err := p.Read(buf); errcode.Of(err) != errcode.Overrun {
		t.Fatalf("err=%v, want overrun", err)
	}
	if p.Buffered() != rxBufferSize {
		t.Fatalf("overrun report consumed data: %d buffered", p.Buffered())
	}
	// Flag cleared by the failed read; the retry drains normally.
	n, err := p.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("retry Read = %d,%v", n, err)
	}
}

func TestReadLineSplitsAtLineFeed(t *testing.T) {
	pins, clk, reg := hostDeps()
	p, err := New(Config{Mode: RxEnable, Baud: 9600, RXPin: 1}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, b := range []byte("AB\nCD") {
		p.buf.Put(b)
	}
	buf := make([]byte, 16)
	n, err := p.ReadLine(buf)
	if err != nil || n != 2 || string(buf[:n]) != "AB" {
		t.Fatalf("ReadLine = %q,%v", buf[:n], err)
	}
	// The line feed is consumed; the rest stays readable.
	n, err = p.Read(buf)
	if err != nil || string(buf[:n]) != "CD" {
		t.Fatalf("second Read = %q,%v", buf[:n], err)
	}
}

func TestWaitLineWakesOnLineFeed(t *testing.T) {
	pins, clk, reg := hostDeps()
	ev := eventbits.New()
	p, err := New(Config{
		Mode: RxEnable, Baud: 9600, RXPin: 1,
		Events: ev, RxBit: 1 << 2,
	}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.WaitLine(ctx) }()

	time.Sleep(10 * time.Millisecond)

	// What the receive engine does on a line feed.
	p.buf.Put('\n')
	ev.Set(1 << 2)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitLine: %v", err)
		}
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for WaitLine")
	}
}

func TestWaitLineWithoutEventsFails(t *testing.T) {
	pins, clk, reg := hostDeps()
	p, err := New(Config{Mode: RxEnable, Baud: 9600, RXPin: 1}, pins, clk, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.WaitLine(context.Background()); errcode.Of(err) != errcode.RxDisabled {
		t.Fatalf("err=%v, want rx_disabled", err)
	}
}
