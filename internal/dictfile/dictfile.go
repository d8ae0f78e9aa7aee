// Package dictfile reads one-word-per-line dictionary files, matching
// original_source/client/runner.cpp's loadDictionary.
package dictfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read parses words from r, one per line. Trailing carriage returns
// and whitespace are stripped; a blank line is kept as a zero-length
// word rather than dropped, matching the original's
// std::getline-then-strip behavior.
func Read(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, strings.TrimRight(scanner.Text(), " \t\r\n"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dictfile: scan: %w", err)
	}
	return words, nil
}

// Load opens path and parses it with Read.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dictfile: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
