// Package validator holds the pure URL checks that gate every inbound link:
// format acceptance, egress safety, normalization and video-ID extraction.
package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// allowedHosts is the fixed allow-list of source hostnames.
var allowedHosts = map[string]struct{}{
	"tiktok.com":     {},
	"www.tiktok.com": {},
	"m.tiktok.com":   {},
	"vm.tiktok.com":  {},
	"vt.tiktok.com":  {},
}

// videoPathPatterns are the four accepted path shapes. Each pattern captures
// the video ID (or short-link token) in its first group.
var videoPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/@[A-Za-z0-9_.\-]+/video/(\d+)`),
	regexp.MustCompile(`^/t/([A-Za-z0-9]+)`),
	regexp.MustCompile(`^/v/(\d+)`),
	regexp.MustCompile(`^/share/video/(\d+)`),
}

// trackingParams are stripped during normalization; every other query
// parameter is preserved.
var trackingParams = []string{"_r", "checksum", "u_code", "preview_pb", "language", "timestamp"}

// IsAcceptableSourceURL reports whether the link points at an allow-listed
// host with one of the supported video path shapes. Unparsable input is
// rejected rather than raising.
func IsAcceptableSourceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if _, ok := allowedHosts[strings.ToLower(u.Hostname())]; !ok {
		return false
	}
	for _, pattern := range videoPathPatterns {
		if pattern.MatchString(u.Path) {
			return true
		}
	}
	return false
}

// IsEgressSafe rejects non-HTTP(S) schemes and hostnames that name loopback,
// private or link-local address space. The check is lexical on the hostname
// only; it does not resolve DNS, so a public name that later resolves to a
// private address is not caught here.
func IsEgressSafe(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return false
	}

	// IPv4 loopback, RFC 1918 private ranges, link-local and the 0. prefix.
	switch {
	case strings.HasPrefix(host, "127."),
		strings.HasPrefix(host, "10."),
		strings.HasPrefix(host, "192.168."),
		strings.HasPrefix(host, "169.254."),
		strings.HasPrefix(host, "0."),
		host == "0.0.0.0":
		return false
	}
	if octet, ok := secondOctet(host, "172."); ok && octet >= 16 && octet <= 31 {
		return false
	}

	// IPv6 loopback, link-local and unique-local forms.
	if strings.Contains(host, ":") {
		switch {
		case host == "::1",
			strings.HasPrefix(host, "fe80:"),
			strings.HasPrefix(host, "fc"),
			strings.HasPrefix(host, "fd"):
			return false
		}
	}

	return true
}

func secondOctet(host, prefix string) (int, bool) {
	if !strings.HasPrefix(host, prefix) {
		return 0, false
	}
	rest := host[len(prefix):]
	dot := strings.IndexByte(rest, '.')
	if dot <= 0 {
		return 0, false
	}
	octet, err := strconv.Atoi(rest[:dot])
	if err != nil {
		return 0, false
	}
	return octet, true
}

// NormalizeURL removes the fixed set of tracking query parameters while
// preserving everything else about the URL.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparsable URL: %w", err)
	}

	query := u.Query()
	for _, param := range trackingParams {
		query.Del(param)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// ExtractVideoID returns the video ID (or short-link token) captured by the
// supported path shapes, or the empty string when none match.
func ExtractVideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	for _, pattern := range videoPathPatterns {
		if m := pattern.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
	}
	return ""
}

// CacheKey derives the memoization key for a source URL: scheme-stripped
// host plus path, query discarded, so tracking-parameter noise never
// fragments the cache.
func CacheKey(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparsable URL: %w", err)
	}
	return strings.ToLower(u.Hostname()) + u.Path, nil
}
