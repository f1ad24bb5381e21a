// =============================================================================
// internal/diag/discovery.go - Authoritative name server discovery
// =============================================================================
package diag

import (
	"context"
	"strings"

	"github.com/miekg/dns"
)

// DiscoverAuthoritativeServers resolves the domain's NS records and then
// each NS hostname to its IPv4/IPv6 addresses, producing a deduplicated,
// first-seen-order list of authoritative server IPs. A domain with no
// resolvable NS yields an empty list: callers treat that as "authoritative
// checks skipped", never as a fatal error.
func DiscoverAuthoritativeServers(ctx context.Context, q Querier, domain string) []string {
	ns := q.Recursive(ctx, domain, dns.TypeNS)
	if !ns.Found() {
		return nil
	}

	var ips []string
	seen := make(map[string]bool)
	for _, target := range ns.Texts() {
		host := strings.TrimSuffix(target, ".")
		for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
			addr := q.Recursive(ctx, host, qtype)
			for _, ip := range addr.Texts() {
				if !seen[ip] {
					seen[ip] = true
					ips = append(ips, ip)
				}
			}
		}
	}
	return ips
}
