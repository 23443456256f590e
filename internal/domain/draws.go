package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDrawList parses a comma-separated draws parameter ("64,65,66").
// Individually invalid entries (non-numeric, non-positive) are dropped and
// reported; an error is returned only when nothing valid remains.
func ParseDrawList(raw string) ([]int, []string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, fmt.Errorf("draws parameter is required")
	}

	var (
		draws    []int
		rejected []string
		seen     = map[int]bool{}
	)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			rejected = append(rejected, part)
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		draws = append(draws, n)
	}

	if len(draws) == 0 {
		return nil, rejected, fmt.Errorf("no valid draw numbers in %q", raw)
	}
	return draws, rejected, nil
}

// ParseDraw parses a single positive draw number.
func ParseDraw(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid draw number %q", raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("draw number must be positive, got %d", n)
	}
	return n, nil
}
