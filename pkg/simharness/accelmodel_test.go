package simharness

import "testing"

func TestMyersDistanceIdentical(t *testing.T) {
	probe := []byte("hest")
	vectors := buildPeq(probe)
	peq := func(c byte) uint16 { return vectors[c] }

	d := myersDistance(peq, len(probe), 1<<uint(len(probe)-1), fullMask(len(probe)), []byte("hest"))
	if d != 0 {
		t.Fatalf("distance(hest, hest) = %d, want 0", d)
	}
}

func TestMyersDistanceOneSubstitution(t *testing.T) {
	probe := []byte("cog")
	vectors := buildPeq(probe)
	peq := func(c byte) uint16 { return vectors[c] }

	d := myersDistance(peq, len(probe), 1<<uint(len(probe)-1), fullMask(len(probe)), []byte("cat"))
	if d != 2 {
		t.Fatalf("distance(cog, cat) = %d, want 2", d)
	}
	d = myersDistance(peq, len(probe), 1<<uint(len(probe)-1), fullMask(len(probe)), []byte("cot"))
	if d != 1 {
		t.Fatalf("distance(cog, cot) = %d, want 1", d)
	}
}

func TestMyersDistanceInsertDelete(t *testing.T) {
	probe := []byte("kitten")
	vectors := buildPeq(probe)
	peq := func(c byte) uint16 { return vectors[c] }

	d := myersDistance(peq, len(probe), 1<<uint(len(probe)-1), fullMask(len(probe)), []byte("sitting"))
	if d != 3 {
		t.Fatalf("distance(kitten, sitting) = %d, want 3", d)
	}
}

func buildPeq(word []byte) map[byte]uint16 {
	v := make(map[byte]uint16)
	for i, c := range word {
		v[c] |= 1 << uint(i)
	}
	return v
}
