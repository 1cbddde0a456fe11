// softserial/rx.go

package softserial

// handleEdge is the receive engine. It runs in interrupt context once per
// falling edge on the RX pin and samples one full frame per activation: no
// state persists between calls. Edge delivery for the pin is masked for the
// handler's duration, so the engine cannot re-enter itself mid-frame.
func (p *Port) handleEdge() {
	p.rx.MaskIRQ()

	if !p.rx.Get() {
		// True start bit. Wait half a period so every later sample lands at
		// a bit centre, then derive all eight deadlines from one timestamp
		// rather than accumulating per-bit delays.
		p.clk.DelayMicros(p.bitTime / 2)
		start := p.clk.Micros()

		var data byte
		for i := int64(1); i <= 8; i++ {
			waitUntil(p.clk, start, start+p.bitTime*i)
			data >>= 1
			if p.rx.Get() {
				data |= 0x80 // LSB first
			}
		}

		// Stop-bit region. The level is deliberately not checked.
		p.clk.DelayMicros(p.bitTime / 2)

		p.buf.Put(data)
		if data == '\n' && p.events != nil {
			p.events.Set(p.rxBit)
		}
	}
	// A high level here was a spurious edge; fall through and re-arm.

	p.rx.UnmaskIRQ()
}
