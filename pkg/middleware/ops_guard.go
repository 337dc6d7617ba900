package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/pkg/configuration"
)

// opsPathPrefixes are the operational surfaces gated behind the guard in
// production: health probes, metrics scrapes and runtime profiling.
var opsPathPrefixes = []string{"/health", "/metrics", "/debug"}

type opsGuard struct {
	conf  *configuration.Configuration
	cidrs []netip.Prefix
}

// OpsGuard hides the ops endpoints from the public internet in
// production. A caller gets through with a source IP inside one of the
// allowed CIDRs, the ops token, or the basic-auth pair. Everyone else
// sees a plain 404, the same as a path that does not exist.
func OpsGuard(conf *configuration.Configuration) mux.MiddlewareFunc {
	if conf == nil {
		conf = configuration.Use()
	}
	g := &opsGuard{
		conf:  conf,
		cidrs: parseCIDRs(conf.OpsGuardCIDRs),
	}
	return g.middleware
}

func (g *opsGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guarding := g.conf.GoAppEnvironment == configuration.Production && g.conf.OpsGuardEnabled
		if !guarding || !isOpsPath(r.URL.Path) || g.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func isOpsPath(path string) bool {
	for _, prefix := range opsPathPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (g *opsGuard) authorized(r *http.Request) bool {
	return g.ipAllowed(r) || g.tokenMatches(r) || g.basicAuthMatches(r)
}

func (g *opsGuard) ipAllowed(r *http.Request) bool {
	if len(g.cidrs) == 0 {
		return false
	}
	ip, ok := realIP(r, g.conf.RealIPHeader)
	if !ok {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range g.cidrs {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func (g *opsGuard) tokenMatches(r *http.Request) bool {
	token := strings.TrimSpace(g.conf.OpsGuardToken)
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tokenFromRequest(r)), []byte(token)) == 1
}

func (g *opsGuard) basicAuthMatches(r *http.Request) bool {
	if strings.TrimSpace(g.conf.OpsGuardBasicAuthUser) == "" &&
		strings.TrimSpace(g.conf.OpsGuardBasicAuthPass) == "" {
		return false
	}
	u, p, ok := r.BasicAuth()
	return ok &&
		subtle.ConstantTimeCompare([]byte(u), []byte(g.conf.OpsGuardBasicAuthUser)) == 1 &&
		subtle.ConstantTimeCompare([]byte(p), []byte(g.conf.OpsGuardBasicAuthPass)) == 1
}

func parseCIDRs(raw string) []netip.Prefix {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]netip.Prefix, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func tokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if t := strings.TrimSpace(r.Header.Get("X-Ops-Token")); t != "" {
		return t
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

func realIP(r *http.Request, header string) (string, bool) {
	if r == nil {
		return "", false
	}
	if header != "" {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			// X-Forwarded-For style: take the first item
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = strings.TrimSpace(v[:i])
			}
			return stripPort(v)
		}
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host, true
	}
	return s, true
}
