// Package corpus generates bounded-alphabet random dictionaries and
// probes for randomized accelerator testing.
package corpus

import "math/rand/v2"

// Config bounds the shape of a generated corpus.
type Config struct {
	Alphabet   string
	MinWordLen int
	MaxWordLen int
	WordCount  int
}

// DefaultConfig matches the accelerator's 16-symbol probe width and a
// small ASCII alphabet, wide enough to exercise collisions without
// overflowing a single bitvector register.
var DefaultConfig = Config{
	Alphabet:   "abcdefghijklmnop",
	MinWordLen: 1,
	MaxWordLen: 16,
	WordCount:  1024,
}

// Generate produces cfg.WordCount random words over cfg.Alphabet with
// lengths in [MinWordLen, MaxWordLen], deterministic for a given rng.
func Generate(rng *rand.Rand, cfg Config) []string {
	words := make([]string, cfg.WordCount)
	for i := range words {
		words[i] = randomWord(rng, cfg)
	}
	return words
}

// RandomProbes produces n random probe words using the same
// constraints as Generate, useful for sweeping a fixed dictionary.
func RandomProbes(rng *rand.Rand, cfg Config, n int) []string {
	probes := make([]string, n)
	for i := range probes {
		probes[i] = randomWord(rng, cfg)
	}
	return probes
}

func randomWord(rng *rand.Rand, cfg Config) string {
	span := cfg.MaxWordLen - cfg.MinWordLen + 1
	n := cfg.MinWordLen + rng.IntN(span)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = cfg.Alphabet[rng.IntN(len(cfg.Alphabet))]
	}
	return string(buf)
}
