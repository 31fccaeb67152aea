// Package clientip extracts real client IP addresses from HTTP requests
// behind proxies, load balancers, and CDNs. Headers are checked in priority
// order (CF-Connecting-IP, X-Forwarded-For, X-Real-IP) before falling back
// to the direct peer address. Used for rate-limit keying and security
// logging, so every candidate is validated before being trusted.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the best-guess client IP for the request. It never panics;
// when no header yields a valid address the raw RemoteAddr host is
// returned.
func GetIP(r *http.Request) string {
	if ip := parse(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	// X-Forwarded-For may hold "client, proxy1, proxy2"; the leftmost
	// entry is the original client.
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := parse(first); ip != "" {
			return ip
		}
	}

	if ip := parse(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := parse(host); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// parse validates and normalizes an IP candidate. The unspecified address
// is rejected since it cannot identify a client.
func parse(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
