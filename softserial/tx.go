// softserial/tx.go

package softserial

import "softserial-go/errcode"

// WriteByte bit-bangs one 8N1 frame synchronously: start bit, eight data
// bits LSB first, stop bit, then six bit periods of idle so the receiving
// end can resynchronise before the next start bit. The call busy-waits for
// the whole frame, roughly ten bit periods plus the settle time.
//
// A failed pin write aborts the frame immediately; the line may be left
// mid-frame, which is accepted since the failure indicates a lower-level
// fault. Concurrent WriteByte calls on one port are the caller's problem.
func (p *Port) WriteByte(b byte) error {
	if p.mode&TxEnable == 0 {
		return errcode.TxDisabled
	}

	start := p.clk.Micros()

	if p.mode&HalfDuplex != 0 {
		if err := p.dir.Set(true); err != nil {
			return errcode.Wrap(errcode.PinWriteFailed, "dir", err)
		}
	}

	// Start bit.
	if err := p.tx.Set(false); err != nil {
		return errcode.Wrap(errcode.PinWriteFailed, "tx", err)
	}
	for i := int64(0); i < 8; i++ {
		waitUntil(p.clk, start, start+p.bitTime*(i+1))
		if err := p.tx.Set(b&(1<<uint(i)) != 0); err != nil {
			return errcode.Wrap(errcode.PinWriteFailed, "tx", err)
		}
	}

	// Stop bit.
	waitUntil(p.clk, start, start+p.bitTime*9)
	if err := p.tx.Set(true); err != nil {
		return errcode.Wrap(errcode.PinWriteFailed, "tx", err)
	}

	// Inter-frame settle.
	p.clk.DelayMicros(p.bitTime * 6)

	if p.mode&HalfDuplex != 0 {
		if err := p.dir.Set(false); err != nil {
			return errcode.Wrap(errcode.PinWriteFailed, "dir", err)
		}
	}
	return nil
}

// Write sends every byte of data, stopping at the first failure.
func (p *Port) Write(data []byte) (int, error) {
	for i, b := range data {
		if err := p.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(data), nil
}

// WriteString sends s up to, and not including, the first NUL byte. A
// string without a NUL is sent whole.
func (p *Port) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return i, nil
		}
		if err := p.WriteByte(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}
