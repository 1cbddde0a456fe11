// softserial/wait.go

package softserial

import "softserial-go/platform"

// waitUntil spins on clk until the counter reaches deadline. Deadlines are
// always derived from start, so a counter observed before start means the
// clock wrapped mid-wait; the wait gives up immediately rather than spin for
// a full counter period. Both the transmit and receive bit loops pace
// themselves with this.
func waitUntil(clk platform.Clock, start, deadline int64) {
	for now := clk.Micros(); now < deadline; now = clk.Micros() {
		if now < start {
			return
		}
	}
}
