package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shandysiswandi/watercan/internal/pkg/config"
)

// proxyTrust decides which peers may speak for the client through
// forwarding headers. With no prefixes configured every header is ignored.
type proxyTrust struct {
	prefixes []netip.Prefix
}

func newProxyTrust(cidrs []string) proxyTrust {
	var pt proxyTrust
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}

		if !strings.Contains(c, "/") {
			addr, err := netip.ParseAddr(c)
			if err != nil {
				slog.Warn("ignoring invalid trusted proxy", "value", c, "error", err)
				continue
			}
			pt.prefixes = append(pt.prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}

		prefix, err := netip.ParsePrefix(c)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy", "value", c, "error", err)
			continue
		}
		pt.prefixes = append(pt.prefixes, prefix.Masked())
	}
	return pt
}

func (pt proxyTrust) trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range pt.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// resolve returns the client address for r. X-Forwarded-For is walked from
// the right and the first hop outside the trusted set wins.
func (pt proxyTrust) resolve(r *http.Request) (netip.Addr, bool) {
	peer, ok := parseHostAddr(r.RemoteAddr)
	if !ok {
		return netip.Addr{}, false
	}
	if !pt.trusted(peer) {
		return peer, true
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !pt.trusted(hop) {
				return hop.Unmap(), true
			}
			peer = hop.Unmap()
		}
		return peer, true
	}

	if xrip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xrip.Unmap(), true
	}

	return peer, true
}

func parseHostAddr(hostport string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// middlewareIP rewrites r.RemoteAddr to the resolved client address so the
// rate limiter and logs key on the real caller.
func middlewareIP(cfg config.Config) Middleware {
	var cidrs []string
	if cfg != nil {
		cidrs = cfg.GetArray("app.server.trusted_proxies")
	}
	pt := newProxyTrust(cidrs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if addr, ok := pt.resolve(r); ok {
				r.RemoteAddr = net.JoinHostPort(addr.String(), "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}
