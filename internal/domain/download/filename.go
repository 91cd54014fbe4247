package download

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultPlaceholder is used when a URL has no trailing path segment.
	DefaultPlaceholder = "image"
)

// ExtractFilenameFromURL returns the last path segment of rawURL.
// An empty segment (URL ending in "/", bare host) yields placeholder.
// The query string and fragment are never part of the name, and control
// characters decoded from the path are dropped.
func ExtractFilenameFromURL(rawURL, placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}

	// Normalize Windows-style separators so a segment never smuggles a directory.
	p = strings.ReplaceAll(p, "\\", "/")

	segment := stripControl(p[strings.LastIndex(p, "/")+1:])
	switch segment {
	case "", ".", "..":
		return placeholder
	}

	return segment
}

// stripControl drops C0, DEL and C1 characters, plus bytes that are not
// valid UTF-8, so a name can neither break a line nor carry an escape sequence.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SplitExt splits name into base and extension. A leading dot is part of
// the base, so ".bashrc" has no extension.
func SplitExt(name string) (base, ext string) {
	ext = path.Ext(name)
	if ext == name {
		return name, ""
	}

	return strings.TrimSuffix(name, ext), ext
}

// MakeUniqueFilename returns filename if it is free, otherwise the first
// free candidate of the form base_N.ext for N = 1, 2, ...
// taken reports whether a candidate is already claimed; it may fail, in
// which case the search stops and the error is returned.
func MakeUniqueFilename(filename string, taken func(name string) (bool, error)) (string, error) {
	used, err := taken(filename)
	if err != nil {
		return "", err
	}
	if !used {
		return filename, nil
	}

	base, ext := SplitExt(filename)

	// Every iteration yields a distinct candidate; the loop ends only when
	// the counter wraps around.
	for i := 1; i > 0; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)

		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}

	return "", ErrResolutionExhausted
}
