package accel

import (
	"math/rand/v2"
	"testing"
)

func TestEncodeBasic(t *testing.T) {
	enc, err := Encode([]byte("hest"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Length != 4 {
		t.Fatalf("Length = %d, want 4", enc.Length)
	}
	if enc.Mask != 1<<3 {
		t.Fatalf("Mask = %#04x, want %#04x", enc.Mask, uint16(1<<3))
	}
	if enc.Vp != 0x000F {
		t.Fatalf("Vp = %#04x, want 0x000f", enc.Vp)
	}

	want := map[byte]uint16{
		'h': 1 << 0,
		'e': 1 << 1,
		's': 1 << 2,
		't': 1 << 3,
	}
	if len(enc.Vectors) != len(want) {
		t.Fatalf("Vectors = %v, want %v", enc.Vectors, want)
	}
	for sym, bits := range want {
		if enc.Vectors[sym] != bits {
			t.Errorf("Vectors[%q] = %#04x, want %#04x", sym, enc.Vectors[sym], bits)
		}
	}
}

func TestEncodeRepeatedSymbol(t *testing.T) {
	enc, err := Encode([]byte("banana"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// a at positions 1,3,5; n at positions 2,4; b at position 0.
	if enc.Vectors['a'] != 1<<1|1<<3|1<<5 {
		t.Errorf("Vectors['a'] = %#04x, want %#04x", enc.Vectors['a'], uint16(1<<1|1<<3|1<<5))
	}
	if enc.Vectors['n'] != 1<<2|1<<4 {
		t.Errorf("Vectors['n'] = %#04x, want %#04x", enc.Vectors['n'], uint16(1<<2|1<<4))
	}
	if enc.Vectors['b'] != 1<<0 {
		t.Errorf("Vectors['b'] = %#04x, want %#04x", enc.Vectors['b'], uint16(1<<0))
	}
}

func TestEncodeSymbolsSortedAndDistinct(t *testing.T) {
	enc, err := Encode([]byte("mississippi"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	seen := make(map[byte]bool)
	for i, s := range enc.Symbols {
		if seen[s] {
			t.Fatalf("Symbols contains duplicate %q", s)
		}
		seen[s] = true
		if i > 0 && enc.Symbols[i-1] >= s {
			t.Fatalf("Symbols not strictly ascending at %d: %v", i, enc.Symbols)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	alphabet := []byte("abcdefgh")

	for trial := 0; trial < 64; trial++ {
		n := 1 + rng.IntN(16)
		word := make([]byte, n)
		for i := range word {
			word[i] = alphabet[rng.IntN(len(alphabet))]
		}

		a, err := Encode(word)
		if err != nil {
			t.Fatalf("Encode(%q): %v", word, err)
		}
		b, err := Encode(word)
		if err != nil {
			t.Fatalf("Encode(%q) second call: %v", word, err)
		}
		if string(a.Symbols) != string(b.Symbols) || a.Vp != b.Vp || a.Mask != b.Mask || a.Length != b.Length {
			t.Fatalf("Encode(%q) not deterministic: %+v vs %+v", word, a, b)
		}
		for sym, bits := range a.Vectors {
			if b.Vectors[sym] != bits {
				t.Fatalf("Encode(%q) vector mismatch for %q: %#04x vs %#04x", word, sym, bits, b.Vectors[sym])
			}
		}
	}
}

func TestEncodeLengthBounds(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Fatal("Encode(nil): expected ProbeTooLong")
	} else if _, ok := err.(ProbeTooLong); !ok {
		t.Fatalf("Encode(nil): got %T, want ProbeTooLong", err)
	}

	seventeen := make([]byte, 17)
	for i := range seventeen {
		seventeen[i] = 'x'
	}
	if _, err := Encode(seventeen); err == nil {
		t.Fatal("Encode(17 bytes): expected ProbeTooLong")
	} else if _, ok := err.(ProbeTooLong); !ok {
		t.Fatalf("Encode(17 bytes): got %T, want ProbeTooLong", err)
	}

	sixteen := make([]byte, 16)
	for i := range sixteen {
		sixteen[i] = 'x'
	}
	enc, err := Encode(sixteen)
	if err != nil {
		t.Fatalf("Encode(16 bytes): %v", err)
	}
	if enc.Vp != 0xFFFF {
		t.Fatalf("Vp for 16-byte word = %#04x, want 0xffff", enc.Vp)
	}
	if enc.Mask != 1<<15 {
		t.Fatalf("Mask for 16-byte word = %#04x, want %#04x", enc.Mask, uint16(1<<15))
	}

	one := []byte{'z'}
	enc, err = Encode(one)
	if err != nil {
		t.Fatalf("Encode(1 byte): %v", err)
	}
	if enc.Vp != 0x0001 || enc.Mask != 0x0001 {
		t.Fatalf("Encode(1 byte) = %+v, want Vp=Mask=0x0001", enc)
	}
}
