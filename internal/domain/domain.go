// Package domain normalizes company website URLs into the key used by the record store.
package domain

import (
	"net/netip"
	"net/url"
	"strings"
)

// Normalize returns the lower-cased hostname of rawURL with any leading "www."
// labels removed. Input without a scheme is treated as https. IPv6 literals keep
// their brackets (zone dropped) so the result normalizes to itself. An empty
// string is returned for input that does not contain a usable host.
func Normalize(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	if addr, err := netip.ParseAddr(host); err == nil && addr.Is6() {
		return "[" + addr.WithZone("").String() + "]"
	}
	host = strings.TrimSuffix(host, ".")
	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}
	if host == "" || strings.ContainsAny(host, " \t\r\n") {
		return ""
	}
	return host
}
