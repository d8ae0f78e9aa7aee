// Package transport implements the two physical framings the
// accelerator's byte bus rides on: a 4-byte command/1-byte response
// UART link, and a bit-banged SPI link with a polled ready signal.
package transport

import (
	"fmt"
	"io"
	"log/slog"

	"go.bug.st/serial"
)

func logger() *slog.Logger {
	return slog.Default().With("component", "transport")
}

// BaudRate is the fixed rate the accelerator's UART runs at, per
// original_source/client/real_uart.cpp.
const BaudRate = 3_000_000

// UART drives the accelerator's byte bus over a 4-byte command frame
// followed by a 1-byte response, per original_source/client/uart_bus.cpp.
type UART struct {
	port io.ReadWriteCloser

	// StrictWriteStatus mirrors the older Wishbone revision's response
	// check (original_source/sim/wishbone.h): a write whose response
	// byte is nonzero is treated as a device-reported error. The newer
	// Compact revision's uart_bus.cpp ignores the response entirely.
	StrictWriteStatus bool
}

// OpenUART opens the named serial port at the accelerator's fixed baud
// rate, 8 data bits, no parity, one stop bit, no flow control.
func OpenUART(name string) (*UART, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", name, err)
	}
	return NewUART(port), nil
}

// NewUART wraps an already-open duplex byte stream, letting callers
// (and tests) supply a simulated or loopback port in place of a real
// serial.Port.
func NewUART(port io.ReadWriteCloser) *UART {
	return &UART{port: port}
}

// Close closes the underlying port.
func (u *UART) Close() error {
	return u.port.Close()
}

// Exec implements bus.Transport: it sends the 4-byte command frame and
// returns the device's 1-byte response.
func (u *UART) Exec(cmd [4]byte) (byte, error) {
	if _, err := u.port.Write(cmd[:]); err != nil {
		return 0, fmt.Errorf("transport: uart write: %w", err)
	}

	resp := make([]byte, 1)
	if _, err := io.ReadFull(u.port, resp); err != nil {
		return 0, fmt.Errorf("transport: uart read: %w", err)
	}

	write := cmd[0]&0x80 != 0
	if write && u.StrictWriteStatus && resp[0] != 0 {
		logger().Warn("uart write rejected", "cmd", cmd, "status", resp[0])
		return resp[0], StrictWriteRejected{Status: resp[0]}
	}
	logger().Debug("uart exec", "cmd", cmd, "resp", resp[0])
	return resp[0], nil
}
