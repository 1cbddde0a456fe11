package errcode

// Code is a stable error identifier for the softserial stack.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Configuration (rejected at init, nothing retained)
	InvalidBaud Code = "invalid_baud"
	PinConflict Code = "pin_conflict"
	PinInUse    Code = "pin_in_use"
	UnknownPin  Code = "unknown_pin"
	RxDisabled  Code = "rx_disabled"
	TxDisabled  Code = "tx_disabled"

	// Platform (propagated from the pin/IRQ services)
	PinConfigFailed Code = "pin_config_failed"
	IRQSetupFailed  Code = "irq_setup_failed"

	// Runtime
	Overrun        Code = "overrun"
	BufferEmpty    Code = "buffer_empty"
	PinWriteFailed Code = "pin_write_failed"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap attaches a Code to an underlying platform error.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
