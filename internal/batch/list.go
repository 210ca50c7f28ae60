package batch

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseList reads one locator per line. Blank lines and lines starting with
// "#" are skipped; duplicates keep their first position.
func ParseList(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	var urls []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch list: %w", err)
	}
	return Dedupe(urls), nil
}

// Dedupe trims entries, drops empty ones, and removes repeats preserving
// first-seen order.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}
