// =============================================================================
// internal/diag/mail_test.go - Mail policy auditor tests
// =============================================================================
package diag

import (
	"context"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailPolicyMXSortedByPreference(t *testing.T) {
	stub := newStub()
	stub.answer("example.org", dns.TypeMX,
		mustRR(t, "example.org. 300 IN MX 20 mail2.example.com."),
		mustRR(t, "example.org. 300 IN MX 10 mail1.example.com."))

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	assert.Equal(t, []string{"10 mail1.example.com.", "20 mail2.example.com."}, report.MX)
	assert.NotContains(t, findingKinds(report.Findings), "sin_mx")
}

func TestMailPolicyNoMX(t *testing.T) {
	stub := newStub()

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	assert.Empty(t, report.MX)
	assert.Contains(t, findingKinds(report.Findings), "sin_mx")
}

func TestMailPolicySPFExtraction(t *testing.T) {
	stub := newStub()
	stub.answer("example.org", dns.TypeTXT,
		mustRR(t, `example.org. 300 IN TXT "google-site-verification=abc123"`),
		mustRR(t, `example.org. 300 IN TXT "v=spf1 include:_spf.example.com ~all"`))

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	require.NotNil(t, report.SPF)
	assert.Equal(t, "v=spf1 include:_spf.example.com ~all", *report.SPF)
	assert.NotContains(t, findingKinds(report.Findings), "sin_spf")
}

func TestMailPolicyNoSPF(t *testing.T) {
	stub := newStub()
	stub.answer("example.org", dns.TypeTXT,
		mustRR(t, `example.org. 300 IN TXT "google-site-verification=abc123"`))

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	assert.Nil(t, report.SPF)
	assert.Contains(t, findingKinds(report.Findings), "sin_spf")
}

func TestMailPolicyDMARCCaseInsensitive(t *testing.T) {
	stub := newStub()
	stub.answer("_dmarc.example.org", dns.TypeTXT,
		mustRR(t, `_dmarc.example.org. 300 IN TXT "V=DMARC1; p=reject; rua=mailto:abuse@example.org"`))

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	require.NotNil(t, report.DMARC)
	assert.Equal(t, "V=DMARC1; p=reject; rua=mailto:abuse@example.org", *report.DMARC)
	assert.NotContains(t, findingKinds(report.Findings), "sin_dmarc")
}

func TestMailPolicyNoDMARC(t *testing.T) {
	stub := newStub()

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	assert.Nil(t, report.DMARC)
	assert.Contains(t, findingKinds(report.Findings), "sin_dmarc")
}

func TestMailPolicyWeakDMARC(t *testing.T) {
	stub := newStub()
	stub.answer("_dmarc.example.org", dns.TypeTXT,
		mustRR(t, `_dmarc.example.org. 300 IN TXT "v=DMARC1; p=none"`))

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	assert.Contains(t, findingKinds(report.Findings), "dmarc_politica_none")
}

func TestMailPolicyMultipleSPF(t *testing.T) {
	stub := newStub()
	stub.answer("example.org", dns.TypeTXT,
		mustRR(t, `example.org. 300 IN TXT "v=spf1 ip4:192.0.2.0/24 -all"`),
		mustRR(t, `example.org. 300 IN TXT "v=spf1 include:other.example -all"`))

	report := NewReporter(stub).MailPolicy(context.Background(), "example.org")

	assert.Contains(t, findingKinds(report.Findings), "spf_multiples")
}

func TestSortMXFallbackOnNonNumeric(t *testing.T) {
	in := []string{"garbage", "10 mail1.example.com."}
	assert.Equal(t, in, sortMXByPreference(in))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "v=spf1 -all", stripQuotes(`"v=spf1 -all"`))
	assert.Equal(t, "v=spf1 -all", stripQuotes("v=spf1 -all"))
	assert.Equal(t, `"`, stripQuotes(`"`))
}
