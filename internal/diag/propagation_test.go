// =============================================================================
// internal/diag/propagation_test.go - Multi-resolver divergence tests
// =============================================================================
package diag

import (
	"context"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagationDivergence(t *testing.T) {
	stub := newStub()
	stub.answerAt("1.1.1.1", "example.org", dns.TypeA,
		mustRR(t, "example.org. 300 IN A 1.1.1.1"))
	stub.answerAt("8.8.8.8", "example.org", dns.TypeA,
		mustRR(t, "example.org. 300 IN A 1.1.1.1"),
		mustRR(t, "example.org. 300 IN A 2.2.2.2"))

	report := NewReporter(stub).Propagation(context.Background(), "example.org", []string{"1.1.1.1", "8.8.8.8"})

	require.NotNil(t, report)
	// The first resolver misses 2.2.2.2 relative to the union; the second
	// resolver sees everything.
	assert.Equal(t, []string{"2.2.2.2"}, report.Divergence["A"]["1.1.1.1"])
	assert.Empty(t, report.Divergence["A"]["8.8.8.8"])
}

func TestPropagationIdenticalAnswersNoDivergence(t *testing.T) {
	stub := newStub()
	for _, ip := range []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"} {
		stub.answerAt(ip, "example.org", dns.TypeA,
			mustRR(t, "example.org. 300 IN A 192.0.2.1"))
		stub.answerAt(ip, "example.org", dns.TypeNS,
			mustRR(t, "example.org. 300 IN NS ns1.example.org."))
	}

	report := NewReporter(stub).Propagation(context.Background(), "example.org",
		[]string{"1.1.1.1", "8.8.8.8", "9.9.9.9"})

	for _, typ := range []string{"A", "AAAA", "NS"} {
		for _, ip := range report.Resolvers {
			assert.Empty(t, report.Divergence[typ][ip], "%s at %s", typ, ip)
		}
	}
}

func TestPropagationIdempotent(t *testing.T) {
	stub := newStub()
	stub.answerAt("1.1.1.1", "example.org", dns.TypeA,
		mustRR(t, "example.org. 300 IN A 1.1.1.1"))
	stub.answerAt("8.8.8.8", "example.org", dns.TypeA,
		mustRR(t, "example.org. 300 IN A 1.1.1.1"),
		mustRR(t, "example.org. 300 IN A 2.2.2.2"))
	stub.answerAt("8.8.8.8", "example.org", dns.TypeNS,
		mustRR(t, "example.org. 300 IN NS ns1.example.org."))
	rep := NewReporter(stub)
	resolvers := []string{"1.1.1.1", "8.8.8.8"}

	// Unchanged resolver answers must reproduce the report exactly,
	// regardless of goroutine scheduling or map iteration order.
	first := rep.Propagation(context.Background(), "example.org", resolvers)
	second := rep.Propagation(context.Background(), "example.org", resolvers)

	assert.Equal(t, first, second)
}

func TestPropagationDefaultResolvers(t *testing.T) {
	stub := newStub()

	report := NewReporter(stub).Propagation(context.Background(), "example.org", nil)

	cfg := DefaultConfig()
	assert.Equal(t, cfg.DefaultResolvers, report.Resolvers)
	for _, ip := range cfg.DefaultResolvers {
		require.Contains(t, report.Answers, ip)
		assert.Empty(t, report.Answers[ip]["A"])
	}
}

func TestPropagationTXTSampled(t *testing.T) {
	stub := newStub()
	stub.answerAt("1.1.1.1", "example.org", dns.TypeTXT,
		mustRR(t, `example.org. 300 IN TXT "one"`),
		mustRR(t, `example.org. 300 IN TXT "two"`),
		mustRR(t, `example.org. 300 IN TXT "three"`),
		mustRR(t, `example.org. 300 IN TXT "four"`),
		mustRR(t, `example.org. 300 IN TXT "five"`))

	report := NewReporter(stub).Propagation(context.Background(), "example.org", []string{"1.1.1.1"})

	assert.Len(t, report.Answers["1.1.1.1"]["TXT"], DefaultConfig().TXTSampleSize)
	// TXT answers are informational only and never enter the divergence maps.
	assert.NotContains(t, report.Divergence, "TXT")
}

func TestPropagationFailedResolverDivergesFully(t *testing.T) {
	stub := newStub()
	stub.answerAt("1.1.1.1", "example.org", dns.TypeA,
		mustRR(t, "example.org. 300 IN A 192.0.2.1"),
		mustRR(t, "example.org. 300 IN A 192.0.2.2"))
	// 8.8.8.8 has nothing registered and answers NO_ANSWER for everything:
	// its divergence is the whole union.

	report := NewReporter(stub).Propagation(context.Background(), "example.org", []string{"1.1.1.1", "8.8.8.8"})

	assert.Empty(t, report.Answers["8.8.8.8"]["A"])
	assert.Equal(t, []string{"192.0.2.1", "192.0.2.2"}, report.Divergence["A"]["8.8.8.8"])
	assert.Empty(t, report.Divergence["A"]["1.1.1.1"])
}
