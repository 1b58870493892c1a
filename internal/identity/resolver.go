// Package identity resolves the stable (user id, IP address) pair that keys
// view deduplication. An authenticated user id is preferred; anonymous
// visitors collapse onto the guest sentinel. The address comes from proxy
// headers when present, falling back to the direct connection.
package identity

import (
	"net"
	"net/http"
	"strings"
)

// GuestID is the sentinel user id recorded for unauthenticated visitors.
// Guests are normalized to this value before every lookup and write so that
// anonymous views from the same address match consistently.
const GuestID uint = 0

// Header names consulted by FromRequest, in order of preference.
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderClientIP     = "X-Client-IP"
)

// Visitor is the deduplication identity: who (or guest) from where.
type Visitor struct {
	// UserID is the authenticated user id, or GuestID.
	UserID uint
	// IP is the sanitized client address. Any non-empty string is accepted;
	// no syntactic validation is performed.
	IP string
}

// IsGuest reports whether the visitor is anonymous.
func (v Visitor) IsGuest() bool { return v.UserID == GuestID }

// Resolve derives a Visitor from raw request signals.
//
// The user id is taken as-is (zero already means guest). The address is
// picked by precedence:
//
//  1. forwardedFor, a Forwarded-For style header; only the first
//     comma-separated token is used, which is the original client. The
//     remaining tokens name intermediate proxies and are ignored.
//  2. clientIP, a Client-IP style header, used whole.
//  3. remoteAddr, the direct connection address; a trailing :port is
//     stripped when present.
//
// Whichever source wins is sanitized: surrounding whitespace trimmed and
// ASCII control characters removed.
func Resolve(userID uint, forwardedFor, clientIP, remoteAddr string) Visitor {
	var ip string
	switch {
	case strings.TrimSpace(forwardedFor) != "":
		ip = firstToken(forwardedFor)
	case strings.TrimSpace(clientIP) != "":
		ip = clientIP
	default:
		ip = stripPort(remoteAddr)
	}
	return Visitor{UserID: userID, IP: sanitize(ip)}
}

// FromRequest resolves a Visitor from an HTTP request using the standard
// proxy headers and the connection's remote address. The authenticated user
// id, if any, is supplied by the caller (this package does not do auth).
func FromRequest(r *http.Request, userID uint) Visitor {
	return Resolve(userID,
		r.Header.Get(HeaderForwardedFor),
		r.Header.Get(HeaderClientIP),
		r.RemoteAddr,
	)
}

// firstToken returns the part of s before the first comma.
func firstToken(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

// stripPort drops a :port suffix from a host:port address. Addresses without
// a port (or unparsable ones) are returned unchanged.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// sanitize trims whitespace and strips ASCII control characters so the value
// is safe as a lookup key and a stored column.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
