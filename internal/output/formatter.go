// =============================================================================
// internal/output/formatter.go - Report rendering (table and JSON)
// =============================================================================
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dnsdiag/dnsdiag/internal/diag"
)

// Format selects how reports are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat maps a CLI flag value to a Format, defaulting to table.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatTable
}

// Formatter renders the diagnostic reports.
type Formatter struct {
	format Format
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) *Formatter {
	return &Formatter{format: format}
}

func (f *Formatter) json(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHealth renders a health report.
func (f *Formatter) FormatHealth(report *diag.HealthReport, w io.Writer) error {
	if f.format == FormatJSON {
		return f.json(report, w)
	}

	fmt.Fprintf(w, "🩺 Salud DNS de %s\n\n", report.Domain)
	table := NewTable([]string{"Type", "Recursive", "Authoritative"})
	for _, typ := range []string{"A", "AAAA", "NS", "SOA"} {
		table.AddRow([]string{
			typ,
			truncateString(strings.Join(report.Recursive[typ], ", "), 60),
			truncateString(strings.Join(report.Authoritative[typ], ", "), 60),
		})
	}
	if err := table.Render(w); err != nil {
		return err
	}
	return f.formatFindings(report.Findings, w)
}

// FormatMailPolicy renders a mail policy report.
func (f *Formatter) FormatMailPolicy(report *diag.MailPolicyReport, w io.Writer) error {
	if f.format == FormatJSON {
		return f.json(report, w)
	}

	fmt.Fprintf(w, "📧 Políticas de correo de %s\n\n", report.Domain)
	fmt.Fprintf(w, "MX:    %s\n", orNone(strings.Join(report.MX, ", ")))
	fmt.Fprintf(w, "SPF:   %s\n", orNone(deref(report.SPF)))
	fmt.Fprintf(w, "DMARC: %s\n", orNone(deref(report.DMARC)))
	return f.formatFindings(report.Findings, w)
}

// FormatDNSSEC renders a DNSSEC report.
func (f *Formatter) FormatDNSSEC(report *diag.DnssecReport, w io.Writer) error {
	if f.format == FormatJSON {
		return f.json(report, w)
	}

	fmt.Fprintf(w, "🔐 Estado DNSSEC de %s\n\n", report.Domain)
	fmt.Fprintf(w, "DS en el padre:     %s\n", yesNo(report.HasDSAtParent))
	fmt.Fprintf(w, "Algoritmos DNSKEY:  %v\n", report.DNSKEYAlgorithms)
	switch {
	case report.SOASignatureValid == nil:
		fmt.Fprintf(w, "Firma SOA:          indeterminada\n")
	case *report.SOASignatureValid:
		fmt.Fprintf(w, "Firma SOA:          válida\n")
	default:
		fmt.Fprintf(w, "Firma SOA:          inválida\n")
	}
	for _, line := range report.DetailLog {
		fmt.Fprintf(w, "  · %s\n", line)
	}
	return f.formatFindings(report.Findings, w)
}

// FormatPropagation renders a propagation report.
func (f *Formatter) FormatPropagation(report *diag.PropagationReport, w io.Writer) error {
	if f.format == FormatJSON {
		return f.json(report, w)
	}

	fmt.Fprintf(w, "🌐 Propagación de %s\n\n", report.Domain)
	table := NewTable([]string{"Resolver", "Type", "Answers", "Missing vs union"})
	for _, ip := range report.Resolvers {
		types := make([]string, 0, len(report.Answers[ip]))
		for typ := range report.Answers[ip] {
			types = append(types, typ)
		}
		sort.Strings(types)
		for _, typ := range types {
			table.AddRow([]string{
				ip,
				typ,
				truncateString(strings.Join(report.Answers[ip][typ], ", "), 48),
				truncateString(strings.Join(report.Divergence[typ][ip], ", "), 32),
			})
		}
	}
	return table.Render(w)
}

// FormatBulk renders a bulk run summary.
func (f *Formatter) FormatBulk(summary *diag.BulkSummary, w io.Writer) error {
	if f.format == FormatJSON {
		return f.json(summary, w)
	}

	fmt.Fprintf(w, "📋 Bulk %s: %d dominios en %v\n\n", summary.Check, summary.TotalDomains, summary.Duration)
	table := NewTable([]string{"Domain", "Duration"})
	for _, result := range summary.Results {
		table.AddRow([]string{result.Domain, result.Duration.String()})
	}
	return table.Render(w)
}

func (f *Formatter) formatFindings(findings []diag.Finding, w io.Writer) error {
	if len(findings) == 0 {
		fmt.Fprintf(w, "\n✅ Sin hallazgos\n")
		return nil
	}
	fmt.Fprintf(w, "\nHallazgos:\n")
	for _, finding := range findings {
		fmt.Fprintf(w, "  %s [%s] %s: %s\n",
			severityIcon(finding.Severity), finding.Severity, finding.Kind, finding.Message)
	}
	return nil
}

func severityIcon(severity diag.Severity) string {
	switch severity {
	case diag.SeverityError:
		return "❌"
	case diag.SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func orNone(s string) string {
	if s == "" {
		return "(ninguno)"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}
