// cmd/loopback/main.go
//go:build !rp2040 && !rp2350

// Host demonstration of the softserial bit engine in virtual time: a
// transmit port records its waveform, the recording is replayed into a
// receive port's edge handler, and the line comes back out of the buffer.
package main

import (
	"softserial-go/pinreg"
	"softserial-go/platform"
	"softserial-go/softserial"
	"softserial-go/x/eventbits"
)

const baud = 9600

func main() {
	clk := platform.NewSimClock(1)
	pins := &platform.HostPinFactory{}
	reg := pinreg.New()
	wire := &platform.Waveform{}

	pins.ByNumber(0)
	txPin, _ := pins.Get(0)
	txPin.Record = wire
	txPin.RecClock = clk

	tx, err := softserial.New(softserial.Config{
		Mode: softserial.TxEnable, Baud: baud, TXPin: 0,
	}, pins, clk, reg)
	if err != nil {
		println("tx init failed:", err.Error())
		return
	}

	pins.ByNumber(1)
	rxPin, _ := pins.Get(1)
	rxPin.Source = wire
	rxPin.SrcClock = clk

	ev := eventbits.New()
	rx, err := softserial.New(softserial.Config{
		Mode: softserial.RxEnable, Baud: baud, RXPin: 1,
		Events: ev, RxBit: 1,
	}, pins, clk, reg)
	if err != nil {
		println("rx init failed:", err.Error())
		return
	}

	println("bit period:", tx.BitTime(), "µs at", baud, "baud")

	if _, err := tx.WriteString("hello, wire\n"); err != nil {
		println("write failed:", err.Error())
		return
	}
	rxPin.ReplayFalling(clk)

	line := make([]byte, 32)
	n, err := rx.ReadLine(line)
	if err != nil {
		println("read failed:", err.Error())
		return
	}
	println("received:", string(line[:n]))
	println("line event bits:", ev.Peek())
	println("virtual time elapsed:", clk.Now(), "µs")
}
