package download

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const maxURLLineLength = 1 << 20

// ParseURLList reads newline-delimited URLs. Surrounding whitespace is
// trimmed, blank lines are skipped and scheme-less lines go through
// NormalizeURL.
func ParseURLList(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxURLLineLength)

	var urls []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, NormalizeURL(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}

	return urls, nil
}

// NormalizeURL adds an https:// prefix to inputs that look like a host and
// path but carry no scheme, e.g. "example.com/a.png". Anything else is
// returned unchanged.
func NormalizeURL(input string) string {
	if input == "" || strings.Contains(input, "://") {
		return input
	}

	host, _, _ := strings.Cut(input, "/")
	if strings.Contains(host, ".") && !strings.ContainsAny(input, " \t") {
		return "https://" + input
	}
	return input
}
