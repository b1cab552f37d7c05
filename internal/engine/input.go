package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadAddressList reads one raw address per line from path. Lines are
// trimmed and blank lines skipped; order and duplicates are preserved, since
// the session owns the entry list verbatim.
func ReadAddressList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open address list: %w", err)
	}
	defer f.Close()

	var entries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read address list: %w", err)
	}

	return entries, nil
}
