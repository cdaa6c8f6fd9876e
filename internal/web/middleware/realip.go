package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxySet is a parsed list of trusted proxy networks.
type ProxySet []netip.Prefix

// ParseProxies parses CIDRs or bare addresses. Blank and malformed entries
// are skipped with a warning.
func ParseProxies(entries []string) ProxySet {
	var set ProxySet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil {
			set = append(set, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			slog.Warn("realip: skipping invalid trusted proxy", "entry", entry, "error", err)
			continue
		}
		addr = addr.Unmap()
		set = append(set, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return set
}

// Contains reports whether addr lies in a trusted network.
func (s ProxySet) Contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr picks the client address for a request relayed by a trusted
// proxy. X-Real-IP wins. Otherwise X-Forwarded-For is read right to left
// and the first hop outside the trusted set is the client, since entries
// left of it were supplied by the client itself.
func (s ProxySet) clientAddr(h http.Header) (netip.Addr, bool) {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		addr, err := netip.ParseAddr(rip)
		return addr.Unmap(), err == nil
	}

	hops := strings.Split(strings.Join(h.Values("X-Forwarded-For"), ","), ",")
	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			return netip.Addr{}, false
		}
		last = addr.Unmap()
		if !s.Contains(last) {
			return last, true
		}
	}
	// Every hop was a trusted proxy; the leftmost is as close as we get.
	return last, last.IsValid()
}

// TrustedRealIP rewrites RemoteAddr to the client address when the
// connection comes from a trusted proxy. Requests from anywhere else keep
// their RemoteAddr, so clients cannot choose their own rate limit bucket.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	proxies := ParseProxies(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(proxies) > 0 && proxies.Contains(remoteAddr(r.RemoteAddr)) {
				if addr, ok := proxies.clientAddr(r.Header); ok {
					r.RemoteAddr = addr.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the client address of r without a port. Run it after
// TrustedRealIP.
func ClientIP(r *http.Request) string {
	if addr := remoteAddr(r.RemoteAddr); addr.IsValid() {
		return addr.String()
	}
	return r.RemoteAddr
}

// remoteAddr parses "host:port" or a bare address. The zero Addr means
// neither parsed.
func remoteAddr(s string) netip.Addr {
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
