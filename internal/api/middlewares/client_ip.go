package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP resolves the address a request came from. Forwarding headers are
// honoured only when the direct peer is a trusted proxy, so clients cannot
// pick their own rate limit key.
type ClientIP struct {
	trusted []netip.Prefix
}

// NewClientIP accepts proxy addresses or CIDR ranges. With none, only the
// connection's peer address is used.
func NewClientIP(proxies []string) (*ClientIP, error) {
	c := &ClientIP{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			pfx, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
			}
			c.trusted = append(c.trusted, pfx.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, err)
		}
		addr = addr.Unmap()
		c.trusted = append(c.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return c, nil
}

func (c *ClientIP) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// From returns the client address for r. Behind trusted proxies it walks
// X-Forwarded-For from the right and takes the first untrusted hop.
func (c *ClientIP) From(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if c == nil || len(c.trusted) == 0 || !c.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !c.isTrusted(hop) {
				return hop
			}
			peer = hop
		}
		return peer
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	return peer
}

// Key returns a KeyFunc that buckets requests per client address.
func (c *ClientIP) Key(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := c.From(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}
