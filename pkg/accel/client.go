// Package accel implements the probe-encoding and search protocol and
// the accelerator client that drives it over a byte bus.
package accel

import (
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/approxmatch/hostctl/pkg/bus"
)

func logger() *slog.Logger {
	return slog.Default().With("component", "accel")
}

// Result is the accelerator's answer to a search: the winning
// dictionary index and its edit distance to the probe.
type Result struct {
	Index    uint16
	Distance uint8
}

// PollConfig controls how Search waits for the accelerator to clear
// its active flag.
type PollConfig struct {
	// Interval is the delay between polls. Any cadence that
	// eventually observes the clear of the active flag is correct
	// per spec.md §4.2 step 6; this only affects liveness.
	Interval time.Duration
	// Budget is the maximum number of polls before Search fails with
	// Timeout.
	Budget int
}

// DefaultPollConfig matches spec.md §4.2's "~10 microsecond quantum".
var DefaultPollConfig = PollConfig{
	Interval: 10 * time.Microsecond,
	Budget:   100_000,
}

// Client owns the device register map for one accelerator instance.
// It is the exclusive writer of that device's registers; callers must
// not share a Client across concurrent searches (spec.md §3
// "Ownership").
type Client struct {
	bus      bus.Bus
	revision Revision
	poll     PollConfig
}

// New constructs a Client bound to bus b under the given revision's
// register map, using DefaultPollConfig.
func New(b bus.Bus, revision Revision) *Client {
	return &Client{bus: b, revision: revision, poll: DefaultPollConfig}
}

// WithPollConfig returns a copy of the client using the given poll
// cadence and budget.
func (c *Client) WithPollConfig(cfg PollConfig) *Client {
	cp := *c
	cp.poll = cfg
	return &cp
}

// Revision returns the register-map policy this client was built
// with.
func (c *Client) Revision() Revision {
	return c.revision
}

// Init zeroes the entire bitvector table. Safe to call repeatedly;
// after it returns the table is guaranteed all-zero (spec.md §4.2).
func (c *Client) Init() error {
	zeros := make([]byte, 512)
	return c.bus.Write(c.revision.BaseBitvectorAddress, zeros)
}

// LoadDictionary writes words to the device dictionary image in
// order: raw word bytes, a word terminator, then a final list
// terminator (spec.md §3, §4.2). It does not verify the write.
func (c *Client) LoadDictionary(words []string) error {
	addr := c.revision.BaseDictionaryAddress
	limit := c.revision.MaxWordBytes

	for _, word := range words {
		if limit > 0 && len(word) > limit {
			return WordTooLong{Word: word, Limit: limit}
		}
		if len(word) > 0 {
			if err := c.bus.Write(addr, []byte(word)); err != nil {
				return err
			}
			addr += uint32(len(word))
		}
		if err := c.bus.Write(addr, []byte{c.revision.WordTerminator}); err != nil {
			return err
		}
		addr++
	}
	return c.bus.Write(addr, []byte{c.revision.ListTerminator})
}

// VerifyDictionary reads the dictionary image back and compares it
// byte-for-byte against the encoding LoadDictionary(words) would have
// produced. It fails at the first discrepancy with DictionaryMismatch.
func (c *Client) VerifyDictionary(words []string) error {
	addr := c.revision.BaseDictionaryAddress

	checkByte := func(want byte) error {
		got := make([]byte, 1)
		if err := c.bus.Read(addr, got); err != nil {
			return err
		}
		if got[0] != want {
			return DictionaryMismatch{Addr: addr, Got: got[0], Want: want}
		}
		addr++
		return nil
	}

	for _, word := range words {
		if len(word) > 0 {
			buf := make([]byte, len(word))
			if err := c.bus.Read(addr, buf); err != nil {
				return err
			}
			for i := 0; i < len(word); i++ {
				if buf[i] != word[i] {
					return DictionaryMismatch{Addr: addr + uint32(i), Got: buf[i], Want: word[i]}
				}
			}
			addr += uint32(len(word))
		}
		if err := checkByte(c.revision.WordTerminator); err != nil {
			return err
		}
	}
	return checkByte(c.revision.ListTerminator)
}

// Search runs the full protocol of spec.md §4.2 steps 1-9: checks the
// device is idle, encodes the probe, writes the bitvector table and
// any scalar setup registers, triggers the search, polls for
// completion, reads the result, and clears the bitvector entries it
// wrote.
func (c *Client) Search(word []byte) (Result, error) {
	active, err := c.readControlStatus()
	if err != nil {
		return Result{}, err
	}
	if active {
		return Result{}, SearchInProgress{}
	}

	enc, err := Encode(word)
	if err != nil {
		return Result{}, err
	}

	for _, c2 := range enc.Symbols {
		v := enc.Vectors[c2]
		if v == 0 {
			continue
		}
		if err := c.writeBigEndian16(c.revision.BaseBitvectorAddress+2*uint32(c2), v); err != nil {
			return Result{}, err
		}
	}

	if c.revision.HasScalarSetup {
		if err := c.bus.Write(c.revision.LengthAddress, []byte{byte(enc.Length)}); err != nil {
			return Result{}, err
		}
		if err := c.writeBigEndian16(c.revision.MaskAddress, enc.Mask); err != nil {
			return Result{}, err
		}
		if err := c.writeBigEndian16(c.revision.VpAddress, enc.Vp); err != nil {
			return Result{}, err
		}
	}

	start := c.revision.EnableValue
	if c.revision.StartIsLength {
		start = byte(enc.Length)
	}
	if err := c.bus.Write(c.revision.ControlAddress, []byte{start}); err != nil {
		return Result{}, err
	}

	began := time.Now()
	result, err := c.pollForResult()
	if err != nil {
		logger().Warn("search failed", "word", string(word), "err", err, "elapsed", time.Since(began))
		return Result{}, err
	}
	logger().Debug("search complete", "word", string(word), "index", result.Index, "distance", result.Distance, "elapsed", time.Since(began))

	for _, c2 := range enc.Symbols {
		if enc.Vectors[c2] == 0 {
			continue
		}
		if err := c.writeBigEndian16(c.revision.BaseBitvectorAddress+2*uint32(c2), 0); err != nil {
			return Result{}, err
		}
	}

	return result, nil
}

func (c *Client) pollForResult() (Result, error) {
	for i := 0; i < c.poll.Budget; i++ {
		status, err := c.readStatusByte()
		if err != nil {
			return Result{}, err
		}
		if status&c.revision.ActiveMask == 0 {
			if c.revision.HasErrorFlag && status&c.revision.ErrorMask != 0 {
				return Result{}, DeviceError{}
			}
			return c.readResult()
		}
		if c.poll.Interval > 0 {
			time.Sleep(c.poll.Interval)
		}
	}
	return Result{}, Timeout{Polls: c.poll.Budget}
}

func (c *Client) readControlStatus() (bool, error) {
	status, err := c.readStatusByte()
	if err != nil {
		return false, err
	}
	return status&c.revision.ActiveMask != 0, nil
}

func (c *Client) readStatusByte() (byte, error) {
	buf := make([]byte, 1)
	if err := c.bus.Read(c.revision.ControlAddress, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (c *Client) readResult() (Result, error) {
	d := make([]byte, 1)
	if err := c.bus.Read(c.revision.DistanceAddress, d); err != nil {
		return Result{}, err
	}
	idx := make([]byte, 2)
	if err := c.bus.Read(c.revision.IndexAddress, idx); err != nil {
		return Result{}, err
	}
	return Result{Index: binary.BigEndian.Uint16(idx), Distance: d[0]}, nil
}

func (c *Client) writeBigEndian16(addr uint32, v uint16) error {
	buf := []byte{byte(v >> 8), byte(v)}
	return c.bus.Write(addr, buf)
}
