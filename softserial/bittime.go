// softserial/bittime.go

package softserial

import "softserial-go/errcode"

// maxBaud is the fastest rate with a non-zero integer bit period; software
// timing in whole microseconds cannot go quicker.
const maxBaud = 1_000_000

// bitPeriod converts a baud rate to an integer bit period in microseconds.
// Truncation loses up to a microsecond at rates that do not divide 1e6
// evenly; the period is bumped when the lost fraction, measured in
// hundredths of a microsecond, exceeds half a microsecond.
func bitPeriod(baud uint32) (int64, error) {
	if baud == 0 || baud > maxBaud {
		return 0, errcode.InvalidBaud
	}
	bt := int64(1_000_000 / baud)
	if int64(100_000_000/baud)-100*bt > 50 {
		bt++
	}
	return bt, nil
}
