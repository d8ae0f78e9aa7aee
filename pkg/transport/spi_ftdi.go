package transport

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// FTDIPins drives the accelerator's SPI bus by bit-banging four GPIO
// lines on an FTDI MPSSE adapter (an FT232H/FT2232H breakout wired to
// the icestick bring-up board), mirroring
// original_source/client/icestick_spi_bus.cpp's direct pin control
// rather than the adapter's hardware SPI mode, since the protocol's
// ready-poll phase does not fit a fixed-length SPI transaction.
type FTDIPins struct {
	CS   gpio.PinOut
	SCK  gpio.PinOut
	MOSI gpio.PinOut
	MISO gpio.PinIn
}

// SetCS implements Pins. The accelerator's chip select is active low.
func (p *FTDIPins) SetCS(asserted bool) error {
	level := gpio.High
	if asserted {
		level = gpio.Low
	}
	if err := p.CS.Out(level); err != nil {
		return fmt.Errorf("transport: ftdi cs: %w", err)
	}
	return nil
}

// Clock implements Pins.
func (p *FTDIPins) Clock(mosi bool) (bool, error) {
	if err := p.MOSI.Out(gpio.Level(mosi)); err != nil {
		return false, fmt.Errorf("transport: ftdi mosi: %w", err)
	}
	if err := p.SCK.Out(gpio.High); err != nil {
		return false, fmt.Errorf("transport: ftdi sck high: %w", err)
	}
	level := p.MISO.Read()
	if err := p.SCK.Out(gpio.Low); err != nil {
		return false, fmt.Errorf("transport: ftdi sck low: %w", err)
	}
	return level == gpio.High, nil
}
