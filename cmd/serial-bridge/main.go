// cmd/serial-bridge/main.go
//go:build rp2040 || rp2350

// Bridges a hardware UART to a half-duplex softserial port, for talking to
// an RS485 sensor chain from a Pico whose PL011s are already in use. Bytes
// arriving on either side are forwarded to the other.
package main

import (
	"time"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"softserial-go/pinreg"
	"softserial-go/platform"
	"softserial-go/softserial"
	"softserial-go/x/mathx"
)

const (
	hardBaud = 115200
	softBaud = 9600

	softRXPin  = 2
	softTXPin  = 3
	softDirPin = 4 // MAX485 DE/RE
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("serial-bridge boot")

	hw := uartx.UART0
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: hardBaud,
		TX:       machine.UART_TX_PIN,
		RX:       machine.UART_RX_PIN,
	})

	sw, err := softserial.New(softserial.Config{
		Mode: softserial.RxEnable | softserial.TxEnable | softserial.HalfDuplex,
		Baud: softBaud,
		RXPin: softRXPin, TXPin: softTXPin, DirPin: softDirPin,
	}, platform.DefaultPinFactory(), platform.DefaultClock(), pinreg.New())
	if err != nil {
		println("softserial init failed:", err.Error())
		return
	}
	println("bridging uart0 @", hardBaud, "<-> GP", softTXPin, "/GP", softRXPin, "@", softBaud)

	buf := make([]byte, 64)
	for {
		moved := pump(hw, sw, buf)
		moved += pump(sw, hw, buf)
		if moved == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// pump moves one bounded chunk of buffered bytes from src to dst. Both ends
// are plain drivers.UART values; the bridge does not care which side is
// implemented in silicon.
func pump(src, dst drivers.UART, buf []byte) int {
	want := mathx.Min(src.Buffered(), len(buf))
	if want == 0 {
		return 0
	}
	n, err := src.Read(buf[:want])
	if err != nil {
		println("read failed:", err.Error())
		return 0
	}
	if n > 0 {
		if _, err := dst.Write(buf[:n]); err != nil {
			println("forward failed:", err.Error())
		}
	}
	return n
}
