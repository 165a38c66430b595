package api

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	authThrottleEvery = 2 * time.Second
	authThrottleBurst = 5
	throttleTTL       = 30 * time.Minute
	throttleSweep     = 5 * time.Minute
)

type throttleEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipThrottle keeps one token bucket per client ip.
type ipThrottle struct {
	mu        sync.Mutex
	entries   map[string]*throttleEntry
	every     time.Duration
	burst     int
	lastSweep time.Time
}

func newIPThrottle(every time.Duration, burst int) *ipThrottle {
	return &ipThrottle{
		entries:   make(map[string]*throttleEntry),
		every:     every,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (t *ipThrottle) allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if now.Sub(t.lastSweep) > throttleSweep {
		for key, e := range t.entries {
			if now.Sub(e.lastUse) > throttleTTL {
				delete(t.entries, key)
			}
		}
		t.lastSweep = now
	}
	e, ok := t.entries[ip]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(rate.Every(t.every), t.burst)}
		t.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.Allow()
}

// parseTrustedProxies accepts single addresses and CIDR prefixes.
func parseTrustedProxies(items []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func isTrusted(trusted []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP is the peer address unless the peer is a trusted proxy. Behind one,
// X-Forwarded-For is read right to left and the first untrusted hop wins, so
// entries a client prepends itself are never used.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = strings.TrimSpace(r.RemoteAddr)
	}
	if !isTrusted(trusted, peer) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(trusted, hop) {
			return hop
		}
	}
	return peer
}
