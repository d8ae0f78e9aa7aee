package simharness

import "github.com/approxmatch/hostctl/pkg/accel"

// Harness wires a Loop and an AcceleratorModel together behind the
// two transport shapes pkg/transport consumes, so pkg/runner can drive
// a simulated accelerator with exactly the same client code path used
// against real hardware.
type Harness struct {
	Loop  *Loop
	Model *AcceleratorModel
}

// NewHarness builds a Harness around a fresh AcceleratorModel pinned
// to revision.
func NewHarness(revision accel.Revision) *Harness {
	return &Harness{
		Loop:  NewLoop(),
		Model: NewAcceleratorModel(revision),
	}
}

// UARTTransport returns a bus.Transport that executes each command
// frame against the model after one simulated clock, standing in for
// the real UART link's per-byte latency.
func (h *Harness) UARTTransport() *UARTSimTransport {
	return &UARTSimTransport{harness: h}
}

// UARTSimTransport implements bus.Transport directly against a
// simulated device, grounded on original_source/client/uart_bus.cpp's
// framing with the timing supplied by Loop instead of a real wire.
type UARTSimTransport struct {
	harness *Harness
}

// Exec implements bus.Transport.
func (t *UARTSimTransport) Exec(cmd [4]byte) (byte, error) {
	t.harness.clocks(1)
	return t.harness.Model.Exec(cmd)
}

// clocks advances the harness's loop by n full clock cycles (2n
// half-edges). The simulated transports step the loop themselves, so
// no separate goroutine has to run it.
func (h *Harness) clocks(n int) {
	for i := 0; i < 2*n; i++ {
		h.Loop.Step()
	}
}

// SimPins implements transport.Pins by driving the accelerator
// model's register file directly against the event loop, mirroring
// original_source/client/verilator_spi_bus.cpp's pin-level simulation
// and its configurable clock divider.
type SimPins struct {
	harness      *Harness
	clockDivider int

	shiftReg [4]byte
	bitCount int
	respBit  int
	respByte byte
	phase    spiPhase
}

type spiPhase int

const (
	phaseShiftCommand spiPhase = iota
	phasePolling
	phaseShiftResponse
)

// NewSimPins builds simulated SPI pins over harness's model, clocked
// every clockDivider rising edges per bit, matching the real bus's
// configurable SPI clock divider.
func NewSimPins(harness *Harness, clockDivider int) *SimPins {
	if clockDivider < 1 {
		clockDivider = 1
	}
	return &SimPins{harness: harness, clockDivider: clockDivider}
}

// SetCS implements transport.Pins: asserting CS begins a new command
// frame; deasserting ends it.
func (p *SimPins) SetCS(asserted bool) error {
	if asserted {
		p.shiftReg = [4]byte{}
		p.bitCount = 0
		p.respBit = 0
		p.respByte = 0
		p.phase = phaseShiftCommand
	}
	return nil
}

// Clock implements transport.Pins.
func (p *SimPins) Clock(mosi bool) (bool, error) {
	p.harness.clocks(p.clockDivider)

	switch p.phase {
	case phaseShiftCommand:
		byteIdx := p.bitCount / 8
		bitIdx := 7 - p.bitCount%8
		if mosi {
			p.shiftReg[byteIdx] |= 1 << uint(bitIdx)
		}
		p.bitCount++
		if p.bitCount == 32 {
			var err error
			p.respByte, err = p.harness.Model.Exec(p.shiftReg)
			if err != nil {
				return false, err
			}
			p.phase = phasePolling
		}
		return false, nil

	case phasePolling:
		p.phase = phaseShiftResponse
		return true, nil

	default: // phaseShiftResponse
		bitIdx := 7 - p.respBit
		bit := p.respByte&(1<<uint(bitIdx)) != 0
		p.respBit++
		return bit, nil
	}
}
