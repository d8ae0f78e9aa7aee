package accel

// Revision pins the device register map, terminator bytes, and
// control-flag semantics that differ between the accelerator's two
// coexisting hardware revisions. It is a construction-time policy
// parameter, not something the client infers from the device, per
// spec.md §9 "Revision drift".
type Revision struct {
	Name string

	// Register addresses. IndexAddress is always 2 bytes,
	// big-endian.
	ControlAddress  uint32
	DistanceAddress uint32
	IndexAddress    uint32

	// MaskAddress/VpAddress/LengthAddress are only meaningful when
	// HasScalarSetup is true.
	HasScalarSetup bool
	LengthAddress  uint32
	MaskAddress    uint32
	VpAddress      uint32

	BaseBitvectorAddress  uint32
	BaseDictionaryAddress uint32

	WordTerminator byte
	ListTerminator byte

	// EnableValue is written to ControlAddress to start a search when
	// StartIsLength is false.
	EnableValue byte
	// ActiveMask is ANDed with a status read of ControlAddress to
	// determine whether a search is in progress.
	ActiveMask byte

	// StartIsLength is Open Question (a): on RevisionCompact the
	// control register doubles as the length register, and writing
	// the (nonzero) probe length both configures and starts the
	// search in one write.
	StartIsLength bool

	// HasErrorFlag is Open Question (b): only RevisionWishbone
	// exposes a device error flag.
	HasErrorFlag bool
	ErrorMask    byte

	// MaxWordBytes bounds a single dictionary word's length. Zero
	// means the client enforces no per-word limit.
	MaxWordBytes int
}

// RevisionWishbone models original_source/sim/accelerator.h: the
// older Wishbone-indirect revision with explicit scalar setup
// registers (length/mask/vp), an EnableFlag distinct from the written
// length, and an ErrorFlag.
var RevisionWishbone = Revision{
	Name:                  "wishbone",
	ControlAddress:        0x000000,
	DistanceAddress:       0x000001,
	IndexAddress:          0x000002,
	HasScalarSetup:        true,
	LengthAddress:         0x000001,
	MaskAddress:           0x000002,
	VpAddress:             0x000004,
	BaseBitvectorAddress:  0x400000,
	BaseDictionaryAddress: 0x600000,
	WordTerminator:        0xFE,
	ListTerminator:        0xFF,
	EnableValue:           0x01,
	ActiveMask:            0x01,
	StartIsLength:         false,
	HasErrorFlag:          true,
	ErrorMask:             0x02,
	MaxWordBytes:          255,
}

// RevisionCompact models original_source/client/client.h: the newer
// revision where the control register is read as a status byte (bit
// 0x80 = active) and written as the probe length itself, with no
// separate scalar setup registers and no error flag.
var RevisionCompact = Revision{
	Name:                  "compact",
	ControlAddress:        0x000000,
	DistanceAddress:       0x000001,
	IndexAddress:          0x000002,
	HasScalarSetup:        false,
	BaseBitvectorAddress:  0x000200,
	BaseDictionaryAddress: 0x000400,
	WordTerminator:        0x00,
	ListTerminator:        0x01,
	ActiveMask:            0x80,
	StartIsLength:         true,
	HasErrorFlag:          false,
	MaxWordBytes:          0,
}
