// =============================================================================
// internal/diag/mail.go - Mail-abuse-prevention record audit
// =============================================================================
package diag

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// ToolMailPolicy is the registered name of the mail policy audit.
const ToolMailPolicy = "correo_politicas"

// MailPolicyReport captures the MX/SPF/DMARC posture of a domain.
type MailPolicyReport struct {
	Domain   string    `json:"domain"`
	MX       []string  `json:"mx"`
	SPF      *string   `json:"spf"`
	DMARC    *string   `json:"dmarc"`
	Findings []Finding `json:"findings"`
}

// MailPolicy audits the domain's MX records and its SPF/DMARC TXT policies,
// flagging whichever of the three is missing. Unparsable entries are skipped
// rather than aborting the audit.
func (r *Reporter) MailPolicy(ctx context.Context, domain string) *MailPolicyReport {
	start := time.Now()
	var findings Findings

	mx := sortMXByPreference(textsOrEmpty(r.q.Recursive(ctx, domain, dns.TypeMX)))
	if len(mx) == 0 {
		findings.Add("sin_mx", SeverityWarning, "El dominio no publica registros MX")
	}

	apexTXT := r.q.Recursive(ctx, domain, dns.TypeTXT).Texts()
	spf := firstWithPrefix(apexTXT, "v=spf1")
	if spf == nil {
		findings.Add("sin_spf", SeverityWarning, "No se encontró registro SPF (v=spf1) en TXT")
	} else {
		auditSPF(apexTXT, &findings)
	}

	dmarcTXT := r.q.Recursive(ctx, "_dmarc."+domain, dns.TypeTXT).Texts()
	dmarc := firstWithPrefix(dmarcTXT, "v=dmarc1")
	if dmarc == nil {
		findings.Add("sin_dmarc", SeverityWarning, "No se encontró registro DMARC en _dmarc."+domain)
	} else {
		auditDMARC(*dmarc, &findings)
	}

	report := &MailPolicyReport{
		Domain:   domain,
		MX:       mx,
		SPF:      spf,
		DMARC:    dmarc,
		Findings: findings.Items(),
	}
	r.emit(ToolMailPolicy, domain, start, report)
	return report
}

// sortMXByPreference orders MX texts ("10 mail.example.com.") by numeric
// preference ascending. If any entry lacks a numeric preference the original
// textual order is kept.
func sortMXByPreference(mx []string) []string {
	type entry struct {
		pref int
		text string
	}
	entries := make([]entry, 0, len(mx))
	for _, text := range mx {
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return mx
		}
		pref, err := strconv.Atoi(fields[0])
		if err != nil {
			return mx
		}
		entries = append(entries, entry{pref: pref, text: text})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].pref < entries[j].pref })
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}

// firstWithPrefix returns the first TXT value whose quote-stripped,
// lower-cased text starts with the prefix.
func firstWithPrefix(txts []string, prefix string) *string {
	for _, txt := range txts {
		s := stripQuotes(txt)
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			return &s
		}
	}
	return nil
}

// stripQuotes removes a single layer of surrounding quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// auditSPF adds findings over an already-present SPF policy.
func auditSPF(apexTXT []string, findings *Findings) {
	count := 0
	for _, txt := range apexTXT {
		if strings.HasPrefix(strings.ToLower(stripQuotes(txt)), "v=spf1") {
			count++
		}
	}
	if count > 1 {
		findings.Add("spf_multiples", SeverityWarning,
			"Hay más de un registro v=spf1; los receptores pueden rechazar el correo")
	}
}

// auditDMARC adds findings over an already-present DMARC policy.
func auditDMARC(dmarc string, findings *Findings) {
	lower := strings.ToLower(dmarc)
	switch {
	case !strings.Contains(lower, "p="):
		findings.Add("dmarc_sin_politica", SeverityWarning,
			"El registro DMARC no declara política (falta la etiqueta p=)")
	case strings.Contains(lower, "p=none"):
		findings.Add("dmarc_politica_none", SeverityInfo,
			"La política DMARC es p=none y no aplica protección")
	}
}
