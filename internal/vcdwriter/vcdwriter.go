// Package vcdwriter emits a minimal Value Change Dump trace of the
// simulated bus signals, standing in for the --vcd-file option of
// original_source/client/main.cpp. No VCD library appears anywhere in
// the example corpus, so this writes the (small, well-specified) text
// format directly with bufio/fmt.
package vcdwriter

import (
	"bufio"
	"fmt"
	"io"
)

// Signal is a named single-bit or multi-bit wire tracked in the dump.
type Signal struct {
	Name string
	Bits int
	id   byte
}

// Writer accumulates signal declarations and timestamped value
// changes, then flushes a VCD file on Close.
type Writer struct {
	w       *bufio.Writer
	signals []*Signal
	started bool
	time    uint64
}

// New wraps w and declares the given signals in the order provided.
func New(w io.Writer, names []Signal) *Writer {
	vw := &Writer{w: bufio.NewWriter(w)}
	for i, s := range names {
		s := s
		s.id = byte('!' + i)
		vw.signals = append(vw.signals, &s)
	}
	return vw
}

func (w *Writer) writeHeader() {
	fmt.Fprintln(w.w, "$timescale 1ns $end")
	fmt.Fprintln(w.w, "$scope module accel $end")
	for _, s := range w.signals {
		fmt.Fprintf(w.w, "$var wire %d %c %s $end\n", s.Bits, s.id, s.Name)
	}
	fmt.Fprintln(w.w, "$upscope $end")
	fmt.Fprintln(w.w, "$enddefinitions $end")
	fmt.Fprintln(w.w, "$dumpvars")
	w.started = true
}

// Tick advances simulated time by one unit.
func (w *Writer) Tick() {
	if !w.started {
		w.writeHeader()
	}
	w.time++
	fmt.Fprintf(w.w, "#%d\n", w.time)
}

// Change records a new value for the named signal at the current
// time. value is written as a binary string for multi-bit signals or
// a single 0/1 for one-bit signals.
func (w *Writer) Change(name string, value uint64) {
	if !w.started {
		w.writeHeader()
	}
	for _, s := range w.signals {
		if s.Name != name {
			continue
		}
		if s.Bits == 1 {
			bit := '0'
			if value&1 != 0 {
				bit = '1'
			}
			fmt.Fprintf(w.w, "%c%c\n", bit, s.id)
			return
		}
		fmt.Fprintf(w.w, "b%0*b %c\n", s.Bits, value, s.id)
		return
	}
}

// Close flushes buffered output.
func (w *Writer) Close() error {
	return w.w.Flush()
}
