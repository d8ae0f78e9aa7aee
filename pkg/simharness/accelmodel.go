package simharness

import "github.com/approxmatch/hostctl/pkg/accel"

// AcceleratorModel is a behavioral twin of the fixed-function matcher.
// It holds the same byte-addressable register file real silicon
// exposes, and on a search trigger computes a genuine bit-parallel
// edit distance against the dictionary image loaded into it, instead
// of returning a canned value. It is grounded on
// original_source/sim/accelerator.h (register semantics and the
// search algorithm) and original_source/sim/wishbone.h (address
// decode), adapted to serve as the device side of the simulated bus
// rather than the client side pkg/accel.Client already covers.
type AcceleratorModel struct {
	revision accel.Revision
	mem      map[uint32]byte

	length uint8
	mask   uint16
	vp     uint16

	active     bool
	busyCycles int
	cyclesLeft int
	errorFlag  bool

	distance uint8
	index    uint16
}

// NewAcceleratorModel constructs a model pinned to the given revision,
// idle, with an empty register file.
func NewAcceleratorModel(revision accel.Revision) *AcceleratorModel {
	return &AcceleratorModel{revision: revision, mem: make(map[uint32]byte)}
}

// SetBusyCycles configures how many status polls report the active
// flag still set before a search completes, for tests that exercise
// Client's poll loop against a wire-accurate device.
func (m *AcceleratorModel) SetBusyCycles(n int) {
	m.busyCycles = n
}

// InjectError sets or clears the device error flag. While it is set,
// every idle status read reports it (RevisionWishbone only).
func (m *AcceleratorModel) InjectError(v bool) {
	m.errorFlag = v
}

// Exec implements bus.Transport: it decodes the 4-byte command frame
// exactly as the real register file would, including the fact that a
// read and a write of the same numeric address can address distinct
// physical registers (the control/status and length/distance
// overlaps in the Wishbone register map).
func (m *AcceleratorModel) Exec(cmd [4]byte) (byte, error) {
	write := cmd[0]&0x80 != 0
	addr := uint32(cmd[0]&0x7F)<<16 | uint32(cmd[1])<<8 | uint32(cmd[2])

	if write {
		return 0, m.writeByte(addr, cmd[3])
	}
	return m.readByte(addr), nil
}

func (m *AcceleratorModel) writeByte(addr uint32, v byte) error {
	r := m.revision
	switch {
	case addr == r.ControlAddress:
		m.onControlWrite(v)
	case r.HasScalarSetup && addr == r.LengthAddress:
		m.length = v
	case r.HasScalarSetup && (addr == r.MaskAddress || addr == r.MaskAddress+1):
		m.mask = setBigEndianByte(m.mask, addr-r.MaskAddress, v)
	case r.HasScalarSetup && (addr == r.VpAddress || addr == r.VpAddress+1):
		m.vp = setBigEndianByte(m.vp, addr-r.VpAddress, v)
	default:
		m.mem[addr] = v
	}
	return nil
}

func (m *AcceleratorModel) readByte(addr uint32) byte {
	r := m.revision
	switch {
	case addr == r.ControlAddress:
		status := m.statusByte()
		m.StepPoll()
		return status
	case addr == r.DistanceAddress:
		return m.distance
	case addr == r.IndexAddress:
		return byte(m.index >> 8)
	case addr == r.IndexAddress+1:
		return byte(m.index)
	default:
		return m.mem[addr]
	}
}

func setBigEndianByte(v uint16, offset uint32, b byte) uint16 {
	if offset == 0 {
		return uint16(b)<<8 | (v & 0x00FF)
	}
	return (v & 0xFF00) | uint16(b)
}

func (m *AcceleratorModel) statusByte() byte {
	if m.active {
		return m.revision.ActiveMask
	}
	var status byte
	if m.revision.HasErrorFlag && m.errorFlag {
		status |= m.revision.ErrorMask
	}
	return status
}

func (m *AcceleratorModel) onControlWrite(v byte) {
	var length int
	var vp, mask uint16

	if m.revision.StartIsLength {
		length = int(v)
		mask = uint16(1) << uint(length-1)
		vp = fullMask(length)
	} else {
		if v != m.revision.EnableValue {
			return
		}
		length = int(m.length)
		mask = m.mask
		vp = m.vp
	}

	m.active = true
	m.cyclesLeft = m.busyCycles
	m.index, m.distance = m.search(length, mask, vp)
	m.active = m.cyclesLeft > 0
}

// StepPoll simulates one status poll during a busy search, decrementing
// the remaining busy cycle count. readByte calls this once per
// control-register read.
func (m *AcceleratorModel) StepPoll() {
	if m.cyclesLeft > 0 {
		m.cyclesLeft--
		if m.cyclesLeft == 0 {
			m.active = false
		}
	}
}

func (m *AcceleratorModel) peq(c byte) uint16 {
	addr := m.revision.BaseBitvectorAddress + 2*uint32(c)
	hi := m.mem[addr]
	lo := m.mem[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

// search runs Myers' bit-vector edit-distance algorithm against every
// word in the dictionary image and returns the index of the closest
// match and its distance. Ties resolve to the lowest index, matching
// a left-to-right hardware scan.
func (m *AcceleratorModel) search(length int, mask, vp uint16) (uint16, uint8) {
	words := m.decodeDictionary()

	bestIndex := uint16(0)
	bestDistance := -1

	for i, word := range words {
		d := myersDistance(m.peq, length, mask, vp, word)
		if bestDistance < 0 || d < bestDistance {
			bestDistance = d
			bestIndex = uint16(i)
		}
	}
	if bestDistance < 0 {
		return 0, uint8(length)
	}
	return bestIndex, uint8(bestDistance)
}

func (m *AcceleratorModel) decodeDictionary() [][]byte {
	r := m.revision
	var words [][]byte
	var cur []byte
	addr := r.BaseDictionaryAddress

	for {
		b, ok := m.mem[addr]
		if !ok && addr != r.BaseDictionaryAddress {
			// Unwritten tail: treat as an implicit list terminator so a
			// model that was never fully loaded doesn't loop forever.
			break
		}
		if b == r.ListTerminator {
			break
		}
		if b == r.WordTerminator {
			words = append(words, cur)
			cur = nil
			addr++
			continue
		}
		cur = append(cur, b)
		addr++
	}
	return words
}

func fullMask(m int) uint16 {
	var v uint16
	for i := 0; i < m; i++ {
		v |= 1 << uint(i)
	}
	return v
}

// myersDistance computes the edit distance between a probe (described
// by its Peq lookup, length, high bit mask, and initial Pv) and text,
// per Myers (1999)'s bit-vector algorithm.
func myersDistance(peq func(byte) uint16, length int, mask, pv uint16, text []byte) int {
	if length == 0 {
		return len(text)
	}
	vMax := fullMask(length)
	score := length
	var vn uint16

	for _, c := range text {
		eq := peq(c)
		xv := eq | vn
		xh := (((eq & pv) + pv) ^ pv) | eq
		ph := vn | ^(xh | pv)
		mh := pv & xh

		if ph&mask != 0 {
			score++
		}
		if mh&mask != 0 {
			score--
		}

		ph = (ph << 1) | 1
		mh = mh << 1

		pv = (mh | ^(xv | ph)) & vMax
		vn = (ph & xv) & vMax
	}
	return score
}
