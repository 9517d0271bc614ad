package psi

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadItems reads a line-delimited item list, trimming whitespace, skipping
// blank lines and dropping duplicates while preserving first-seen order.
func ReadItems(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		item := strings.TrimSpace(scanner.Text())
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return out, nil
}

// LoadItems reads the server item set from a file. The set is loaded once at
// startup and held immutable for the process lifetime.
func LoadItems(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open item set %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ReadItems(f)
}
