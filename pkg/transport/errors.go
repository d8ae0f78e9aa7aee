package transport

import "fmt"

// TransportTimeout is returned when a transport gives up waiting for a
// ready signal (UART: none needed; SPI: MISO never went high).
type TransportTimeout struct {
	Polls int
}

func (e TransportTimeout) Error() string {
	return fmt.Sprintf("transport: timed out after %d polls waiting for ready", e.Polls)
}

// StrictWriteRejected is returned by a UART transport constructed with
// StrictWriteStatus when the device responds to a write frame with a
// nonzero status byte, mirroring original_source/sim/wishbone.h's
// "Wishbone error" check.
type StrictWriteRejected struct {
	Status byte
}

func (e StrictWriteRejected) Error() string {
	return fmt.Sprintf("transport: device rejected write with status %#02x", e.Status)
}
