package transport

import "testing"

// fakePins is a Pins double that records the exact sequence of
// (mosi, sck-pulse) cycles and plays back a scripted MISO sequence,
// letting tests verify the bit-exact wire trace SPI.Exec produces.
// Every Clock call consumes one entry from misoQueue regardless of
// phase (command shift, ready poll, or response read), matching a
// real shift register.
type fakePins struct {
	csHistory []bool
	mosiBits  []bool
	misoQueue []bool
}

func (f *fakePins) SetCS(asserted bool) error {
	f.csHistory = append(f.csHistory, asserted)
	return nil
}

func (f *fakePins) Clock(mosi bool) (bool, error) {
	f.mosiBits = append(f.mosiBits, mosi)
	if len(f.misoQueue) == 0 {
		return false, nil
	}
	miso := f.misoQueue[0]
	f.misoQueue = f.misoQueue[1:]
	return miso, nil
}

func bitsOf(b byte) []bool {
	bits := make([]bool, 8)
	for i := 0; i < 8; i++ {
		bits[i] = b&(1<<uint(7-i)) != 0
	}
	return bits
}

// idleCommandPhase returns the 32 don't-care MISO samples SPI.Exec
// clocks through while shifting out the command frame.
func idleCommandPhase() []bool {
	return make([]bool, 32)
}

func TestSPIExecShiftsCommandMSBFirst(t *testing.T) {
	var queue []bool
	queue = append(queue, idleCommandPhase()...)
	queue = append(queue, true) // ready on the first poll
	queue = append(queue, bitsOf(0x01)...)

	pins := &fakePins{misoQueue: queue}
	s := NewSPI(pins)

	resp, err := s.Exec([4]byte{0x81, 0x00, 0x02, 0x2A})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if resp != 0x01 {
		t.Fatalf("resp = %#02x, want 0x01", resp)
	}

	var want []bool
	want = append(want, bitsOf(0x81)...)
	want = append(want, bitsOf(0x00)...)
	want = append(want, bitsOf(0x02)...)
	want = append(want, bitsOf(0x2A)...)
	want = append(want, false)              // one ready poll, which sees MISO high
	want = append(want, make([]bool, 8)...) // eight clocks to read the response

	if len(pins.mosiBits) != len(want) {
		t.Fatalf("clocked %d bits, want %d", len(pins.mosiBits), len(want))
	}
	for i := range want {
		if pins.mosiBits[i] != want[i] {
			t.Errorf("bit %d: mosi = %v, want %v", i, pins.mosiBits[i], want[i])
		}
	}
}

func TestSPIExecAssertsAndDeassertsCS(t *testing.T) {
	var queue []bool
	queue = append(queue, idleCommandPhase()...)
	queue = append(queue, true)
	queue = append(queue, make([]bool, 8)...)

	pins := &fakePins{misoQueue: queue}
	s := NewSPI(pins)

	if _, err := s.Exec([4]byte{}); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(pins.csHistory) != 2 || pins.csHistory[0] != true || pins.csHistory[1] != false {
		t.Fatalf("csHistory = %v, want [true false]", pins.csHistory)
	}
}

func TestSPIExecTimesOutWithoutReady(t *testing.T) {
	pins := &fakePins{} // MISO never goes high
	s := NewSPI(pins)

	_, err := s.Exec([4]byte{})
	if _, ok := err.(TransportTimeout); !ok {
		t.Fatalf("Exec: got %T (%v), want TransportTimeout", err, err)
	}
}

func TestSPIExecReadsResponseBitsMSBFirst(t *testing.T) {
	var queue []bool
	queue = append(queue, idleCommandPhase()...)
	queue = append(queue, true) // ready immediately
	queue = append(queue, bitsOf(0xA5)...)

	pins := &fakePins{misoQueue: queue}
	s := NewSPI(pins)

	resp, err := s.Exec([4]byte{})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if resp != 0xA5 {
		t.Fatalf("resp = %#02x, want 0xa5", resp)
	}
}
