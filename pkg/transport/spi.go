package transport

// Pins is the physical interface a SPI transport bit-bangs against:
// one full clock cycle drives MOSI, pulses the clock, and samples
// MISO. Both the FTDI MPSSE adapter and the simulated icestick/
// verilator bus in pkg/simharness implement it.
type Pins interface {
	// SetCS asserts or deasserts chip select.
	SetCS(asserted bool) error
	// Clock drives mosi onto the MOSI line, pulses SCK once, and
	// returns the MISO line's sampled value.
	Clock(mosi bool) (miso bool, err error)
}

// MaxReadyPolls bounds how many clock cycles SPI spends waiting for
// the device to raise MISO before giving up, per
// original_source/client/icestick_spi_bus.cpp's ready-poll loop.
const MaxReadyPolls = 1 << 20

// SPI drives the accelerator's byte bus by shifting a 32-bit command
// out MSB-first, polling MISO for a ready signal, then shifting an
// 8-bit response in, per original_source/client/icestick_spi_bus.cpp.
type SPI struct {
	pins Pins
}

// NewSPI builds a SPI transport over the given physical pins.
func NewSPI(pins Pins) *SPI {
	return &SPI{pins: pins}
}

// Exec implements bus.Transport.
func (s *SPI) Exec(cmd [4]byte) (byte, error) {
	if err := s.pins.SetCS(true); err != nil {
		return 0, err
	}
	defer s.pins.SetCS(false)

	for _, b := range cmd {
		for bit := 7; bit >= 0; bit-- {
			if _, err := s.pins.Clock(b&(1<<uint(bit)) != 0); err != nil {
				return 0, err
			}
		}
	}

	ready := false
	for i := 0; i < MaxReadyPolls; i++ {
		miso, err := s.pins.Clock(false)
		if err != nil {
			return 0, err
		}
		if miso {
			ready = true
			break
		}
	}
	if !ready {
		logger().Warn("spi poll timed out", "cmd", cmd, "polls", MaxReadyPolls)
		return 0, TransportTimeout{Polls: MaxReadyPolls}
	}

	var resp byte
	for bit := 7; bit >= 0; bit-- {
		miso, err := s.pins.Clock(false)
		if err != nil {
			return 0, err
		}
		if miso {
			resp |= 1 << uint(bit)
		}
	}
	logger().Debug("spi exec", "cmd", cmd, "resp", resp)
	return resp, nil
}
