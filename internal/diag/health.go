// =============================================================================
// internal/diag/health.go - Consolidated zone health report
// =============================================================================
package diag

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/dnsdiag/dnsdiag/internal/resolver"
)

// ToolHealth is the registered name of the health check.
const ToolHealth = "salud_dns"

// HealthReport compares what recursive resolvers report against the
// domain's own authoritative servers and carries the heuristic findings.
type HealthReport struct {
	Domain        string              `json:"domain"`
	Recursive     map[string][]string `json:"recursive"`
	Authoritative map[string][]string `json:"authoritative"`
	Findings      []Finding           `json:"findings"`
}

var healthTypes = []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeNS, dns.TypeSOA}

// Health runs the zone health check for a domain: recursive and
// authoritative views of A/AAAA/NS/SOA plus the wildcard, TTL-skew and
// dangling-CNAME heuristics. Individual resolution failures degrade to
// absent record sets; nothing here aborts the report.
func (r *Reporter) Health(ctx context.Context, domain string) *HealthReport {
	start := time.Now()
	var findings Findings

	a := r.q.Recursive(ctx, domain, dns.TypeA)
	aaaa := r.q.Recursive(ctx, domain, dns.TypeAAAA)
	ns := r.q.Recursive(ctx, domain, dns.TypeNS)
	soa := r.q.Recursive(ctx, domain, dns.TypeSOA)
	cname := r.q.Recursive(ctx, domain, dns.TypeCNAME)

	auth := r.authoritativeView(ctx, domain)

	r.checkWildcard(ctx, domain, &findings)
	checkTTLSkew([]resolver.Outcome{a, aaaa, ns, soa}, r.cfg.TTLSkewFactor, &findings)
	r.checkDanglingCNAME(ctx, cname, &findings)

	report := &HealthReport{
		Domain: domain,
		Recursive: map[string][]string{
			"A":    textsOrEmpty(a),
			"AAAA": textsOrEmpty(aaaa),
			"NS":   stripDots(textsOrEmpty(ns)),
			"SOA":  textsOrEmpty(soa),
		},
		Authoritative: auth,
		Findings:      findings.Items(),
	}
	r.emit(ToolHealth, domain, start, report)
	return report
}

// authoritativeView queries every discovered authoritative server (capped)
// for A/AAAA/NS/SOA and unions the textual answers per type. The per-server
// queries share no state, so they run in parallel and join before the union.
func (r *Reporter) authoritativeView(ctx context.Context, domain string) map[string][]string {
	servers := DiscoverAuthoritativeServers(ctx, r.q, domain)
	if len(servers) > r.cfg.AuthServerCap {
		servers = servers[:r.cfg.AuthServerCap]
	}

	view := make(map[string][]string, len(healthTypes))
	for _, qtype := range healthTypes {
		answers := make([][]string, len(servers))
		var wg sync.WaitGroup
		for i, ip := range servers {
			wg.Add(1)
			go func(i int, ip string) {
				defer wg.Done()
				answers[i] = r.q.Authoritative(ctx, ip, domain, qtype).Texts()
			}(i, ip)
		}
		wg.Wait()

		seen := make(map[string]bool)
		union := []string{}
		for _, texts := range answers {
			for _, text := range texts {
				if !seen[text] {
					seen[text] = true
					union = append(union, text)
				}
			}
		}
		sort.Strings(union)
		view[dns.TypeToString[qtype]] = union
	}
	return view
}

// checkWildcard probes a freshly generated random subdomain; a resolving A
// answer means the zone most likely carries a catch-all record.
func (r *Reporter) checkWildcard(ctx context.Context, domain string, findings *Findings) {
	probe := strings.TrimSuffix(randomLabel(r.cfg.WildcardLabelLength)+"."+domain, ".")
	out := r.q.Recursive(ctx, probe, dns.TypeA)
	if out.Found() {
		findings.Add("wildcard", SeverityWarning,
			fmt.Sprintf("Resuelve %s -> %v (posible comodín)", probe, out.Texts()))
	}
}

// checkTTLSkew flags apex record sets whose TTLs spread too far apart.
func checkTTLSkew(outcomes []resolver.Outcome, factor uint32, findings *Findings) {
	var ttls []uint32
	for _, out := range outcomes {
		if out.Found() {
			ttls = append(ttls, out.Set.TTL())
		}
	}
	if len(ttls) == 0 {
		return
	}
	tmin, tmax := ttls[0], ttls[0]
	for _, ttl := range ttls[1:] {
		if ttl < tmin {
			tmin = ttl
		}
		if ttl > tmax {
			tmax = ttl
		}
	}
	floor := tmin
	if floor < 1 {
		floor = 1
	}
	// Compare in uint64: factor*floor can wrap uint32 on hostile TTLs.
	if uint64(tmax) >= uint64(factor)*uint64(floor) {
		findings.Add("ttls_desbalanceados", SeverityInfo,
			fmt.Sprintf("TTLs variados en apex (min=%d, max=%d)", tmin, tmax))
	}
}

// checkDanglingCNAME verifies that an apex CNAME target still resolves.
func (r *Reporter) checkDanglingCNAME(ctx context.Context, cname resolver.Outcome, findings *Findings) {
	if !cname.Found() {
		return
	}
	target := strings.TrimSuffix(cname.Texts()[0], ".")
	a := r.q.Recursive(ctx, target, dns.TypeA)
	aaaa := r.q.Recursive(ctx, target, dns.TypeAAAA)
	if !a.Found() && !aaaa.Found() {
		findings.Add("cname_colgante", SeverityError,
			fmt.Sprintf("CNAME apunta a %s que no resuelve A/AAAA", target))
	}
}

const labelAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomLabel(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = labelAlphabet[rand.IntN(len(labelAlphabet))]
	}
	return string(b)
}

func textsOrEmpty(out resolver.Outcome) []string {
	if texts := out.Texts(); texts != nil {
		return texts
	}
	return []string{}
}

func stripDots(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = strings.TrimSuffix(t, ".")
	}
	return out
}
