// =============================================================================
// internal/diag/propagation.go - Multi-resolver answer divergence
// =============================================================================
package diag

import (
	"context"
	"sort"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// ToolPropagation is the registered name of the propagation comparison.
const ToolPropagation = "propagacion"

// PropagationReport holds each resolver's answers per record type and, for
// A/AAAA/NS, the set-difference of each resolver's answers against the union
// across all resolvers. A non-empty difference names records other resolvers
// see that this one does not. No severity classification is applied: the raw
// divergence data is returned for caller interpretation.
type PropagationReport struct {
	Domain     string                         `json:"domain"`
	Resolvers  []string                       `json:"resolvers"`
	Answers    map[string]map[string][]string `json:"answers"`
	Divergence map[string]map[string][]string `json:"divergence"`
}

var (
	propagationTypes = []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeNS, dns.TypeTXT}
	divergenceTypes  = []uint16{dns.TypeA, dns.TypeAAAA, dns.TypeNS}
)

// Propagation queries each resolver independently for A/AAAA/NS/TXT and
// computes the per-type divergence. A failure against one resolver does not
// affect the others. When resolvers is empty the configured default public
// set is used.
func (r *Reporter) Propagation(ctx context.Context, domain string, resolvers []string) *PropagationReport {
	start := time.Now()
	if len(resolvers) == 0 {
		resolvers = r.cfg.DefaultResolvers
	}

	answers := make(map[string]map[string][]string, len(resolvers))
	perResolver := make([]map[string][]string, len(resolvers))

	// Per-resolver queries share no state; fan out bounded by the resolver
	// count and join before computing unions.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(resolvers))
	for i, ip := range resolvers {
		g.Go(func() error {
			byType := make(map[string][]string, len(propagationTypes))
			for _, qtype := range propagationTypes {
				texts := textsOrEmpty(r.q.RecursiveAt(gctx, ip, domain, qtype))
				if qtype == dns.TypeTXT && len(texts) > r.cfg.TXTSampleSize {
					texts = texts[:r.cfg.TXTSampleSize]
				}
				byType[dns.TypeToString[qtype]] = texts
			}
			perResolver[i] = byType
			return nil
		})
	}
	_ = g.Wait()

	for i, ip := range resolvers {
		answers[ip] = perResolver[i]
	}

	report := &PropagationReport{
		Domain:     domain,
		Resolvers:  resolvers,
		Answers:    answers,
		Divergence: computeDivergence(resolvers, answers),
	}
	r.emit(ToolPropagation, domain, start, report)
	return report
}

// computeDivergence builds, per record type, union − answers[ip] for every
// resolver.
func computeDivergence(resolvers []string, answers map[string]map[string][]string) map[string]map[string][]string {
	divergence := make(map[string]map[string][]string, len(divergenceTypes))
	for _, qtype := range divergenceTypes {
		typeName := dns.TypeToString[qtype]

		union := make(map[string]bool)
		for _, ip := range resolvers {
			for _, text := range answers[ip][typeName] {
				union[text] = true
			}
		}

		perIP := make(map[string][]string, len(resolvers))
		for _, ip := range resolvers {
			have := make(map[string]bool, len(answers[ip][typeName]))
			for _, text := range answers[ip][typeName] {
				have[text] = true
			}
			missing := []string{}
			for text := range union {
				if !have[text] {
					missing = append(missing, text)
				}
			}
			sort.Strings(missing)
			perIP[ip] = missing
		}
		divergence[typeName] = perIP
	}
	return divergence
}
