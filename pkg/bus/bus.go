// Package bus implements the generic byte-addressed register/memory
// bus that sits between the accelerator client and a physical or
// simulated transport.
package bus

import "fmt"

// MaxAddress is the highest addressable byte: the bus address space is
// 24 bits wide but the top bit of the first command byte of every
// transport frame is reserved to encode the read/write direction.
const MaxAddress = 0x7FFFFF

// Transport is the one-byte-frame primitive shared by every physical
// or simulated bus backend: a single 4-byte command yields a single
// response byte.
type Transport interface {
	// Exec sends one command frame and returns the response byte.
	// cmd[0] carries the direction bit and the high 7 address bits,
	// cmd[1:3] the remaining address bits, cmd[3] the write data (or
	// zero on a read).
	Exec(cmd [4]byte) (byte, error)
}

// Bus is the abstract byte-addressed read/write contract the
// accelerator client is built against.
type Bus interface {
	Read(addr uint32, buf []byte) error
	Write(addr uint32, data []byte) error
}

// TransportBus adapts a one-byte-frame Transport into the sequential
// multi-byte Bus contract.
type TransportBus struct {
	transport Transport
}

// New wraps a Transport as a Bus.
func New(transport Transport) *TransportBus {
	return &TransportBus{transport: transport}
}

func (b *TransportBus) Read(addr uint32, buf []byte) error {
	for i := range buf {
		v, err := b.exec(false, addr, 0)
		if err != nil {
			return err
		}
		buf[i] = v
		addr++
	}
	return nil
}

func (b *TransportBus) Write(addr uint32, data []byte) error {
	for _, v := range data {
		if _, err := b.exec(true, addr, v); err != nil {
			return err
		}
		addr++
	}
	return nil
}

func (b *TransportBus) exec(write bool, addr uint32, data byte) (byte, error) {
	if addr > MaxAddress {
		return 0, AddressOutOfRange{Address: addr}
	}
	var cmd [4]byte
	cmd[0] = byte(addr >> 16 & 0x7F)
	if write {
		cmd[0] |= 0x80
	}
	cmd[1] = byte(addr >> 8)
	cmd[2] = byte(addr)
	cmd[3] = data

	v, err := b.transport.Exec(cmd)
	if err != nil {
		return 0, TransportFailure{Err: err}
	}
	return v, nil
}

// AddressOutOfRange reports a bus address above MaxAddress.
type AddressOutOfRange struct {
	Address uint32
}

func (e AddressOutOfRange) Error() string {
	return fmt.Sprintf("bus: address 0x%06x out of range (max 0x%06x)", e.Address, MaxAddress)
}

// TransportFailure wraps an underlying transport error.
type TransportFailure struct {
	Err error
}

func (e TransportFailure) Error() string {
	return fmt.Sprintf("bus: transport failure: %s", e.Err)
}

func (e TransportFailure) Unwrap() error {
	return e.Err
}
