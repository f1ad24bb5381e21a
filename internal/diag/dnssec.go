// =============================================================================
// internal/diag/dnssec.go - DNSSEC chain-of-trust validation
// =============================================================================
package diag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// ToolDNSSEC is the registered name of the DNSSEC check.
const ToolDNSSEC = "estado_dnssec"

// DnssecReport describes the DNSSEC posture of a domain.
//
// SOASignatureValid is three-valued: true when the SOA RRSIG verified
// against the published keys, false when verification was attempted and
// failed, and nil when it could not be determined (missing RRSIG or DNSKEY).
// The nil state carries a detail-log line but no finding; the false state
// carries a firma_soa_invalida warning. The two are deliberately distinct.
type DnssecReport struct {
	Domain            string    `json:"domain"`
	HasDSAtParent     bool      `json:"has_ds_at_parent"`
	DNSKEYAlgorithms  []int     `json:"dnskey_algorithms"`
	SOASignatureValid *bool     `json:"soa_signature_valid"`
	DetailLog         []string  `json:"detail_log"`
	Findings          []Finding `json:"findings"`
}

// DNSSEC checks the delegation chain of a domain: parent DS presence, the
// zone's DNSKEY set, DS/DNSKEY digest matching across the full
// cross-product, and an RRSIG validation of the SOA record set. Every
// failure is downgraded to a finding; nothing raises past this boundary.
func (r *Reporter) DNSSEC(ctx context.Context, domain string) *DnssecReport {
	start := time.Now()
	var findings Findings
	details := []string{}

	dsOut := r.q.Recursive(ctx, domain, dns.TypeDS)
	dsRecords := typedRecords[*dns.DS](dsOut.Set.Records())
	hasDS := len(dsRecords) > 0
	details = append(details, fmt.Sprintf("DS en el padre: %d registros", len(dsRecords)))

	keyOut := r.q.Recursive(ctx, domain, dns.TypeDNSKEY)
	keys := typedRecords[*dns.DNSKEY](keyOut.Set.Records())
	algorithms := distinctAlgorithms(keys)
	if len(keys) == 0 {
		findings.Add("sin_dnskey", SeverityError, "El dominio no publica registros DNSKEY")
	} else {
		details = append(details, fmt.Sprintf("DNSKEY: %d claves, algoritmos %v", len(keys), algorithms))
	}

	if hasDS && len(keys) > 0 && !anyDSMatch(dsRecords, keys) {
		findings.Add("ds_dnskey_mismatch", SeverityError,
			"Ningún DS del padre coincide con las DNSKEY publicadas; la cadena de confianza está rota")
	}

	soaValid := r.validateSOASignature(ctx, domain, keys, &details, &findings)

	report := &DnssecReport{
		Domain:            domain,
		HasDSAtParent:     hasDS,
		DNSKEYAlgorithms:  algorithms,
		SOASignatureValid: soaValid,
		DetailLog:         details,
		Findings:          findings.Items(),
	}
	r.emit(ToolDNSSEC, domain, start, report)
	return report
}

// anyDSMatch reports whether any (DNSKEY, DS) pair in the cross-product
// yields a digest match under the DS record's declared digest algorithm.
func anyDSMatch(dsRecords []*dns.DS, keys []*dns.DNSKEY) bool {
	for _, key := range keys {
		for _, ds := range dsRecords {
			derived := key.ToDS(ds.DigestType)
			if derived != nil && strings.EqualFold(derived.Digest, ds.Digest) {
				return true
			}
		}
	}
	return false
}

// validateSOASignature issues one DO-bit SOA query at the first configured
// recursive nameserver and, when both a SOA record set and a covering RRSIG
// come back, verifies the signature against a key ring built from the
// published DNSKEYs. The returned pointer is nil when validation could not
// be attempted at all.
func (r *Reporter) validateSOASignature(
	ctx context.Context, domain string, keys []*dns.DNSKEY, details *[]string, findings *Findings,
) *bool {
	servers := r.q.Nameservers()
	if len(servers) == 0 {
		*details = append(*details, "sin resolutores configurados; validación SOA omitida")
		return nil
	}

	resp, err := r.q.AuthoritativeMsg(ctx, servers[0], domain, dns.TypeSOA)
	if err != nil || resp == nil {
		*details = append(*details, "sin respuesta SOA con DNSSEC-OK; validación omitida")
		return nil
	}

	soaSet := recordsOfType(resp.Answer, dns.TypeSOA)
	rrsig := coveringRRSIG(resp.Answer, dns.TypeSOA)
	switch {
	case len(soaSet) == 0:
		*details = append(*details, "la respuesta no contiene SOA; validación omitida")
		return nil
	case rrsig == nil:
		*details = append(*details, "SOA sin RRSIG que lo cubra; validación omitida")
		return nil
	case len(keys) == 0:
		*details = append(*details, "RRSIG presente pero sin DNSKEY disponible; validación omitida")
		return nil
	}

	valid := false
	if err := verifyAgainstKeyRing(soaSet, rrsig, keys); err != nil {
		findings.Add("firma_soa_invalida", SeverityWarning,
			fmt.Sprintf("La firma RRSIG del SOA no valida: %v", err))
		return &valid
	}
	*details = append(*details, "firma RRSIG del SOA validada correctamente")
	valid = true
	return &valid
}

// verifyAgainstKeyRing locates the signing key by (owner, key tag,
// algorithm) and verifies the signature, including its validity window.
func verifyAgainstKeyRing(rrset []dns.RR, rrsig *dns.RRSIG, keys []*dns.DNSKEY) error {
	ring := make(map[string]*dns.DNSKEY, len(keys))
	for _, key := range keys {
		ring[keyRingID(key.Header().Name, key.KeyTag(), key.Algorithm)] = key
	}
	key, ok := ring[keyRingID(rrsig.SignerName, rrsig.KeyTag, rrsig.Algorithm)]
	if !ok {
		return fmt.Errorf("no hay DNSKEY para %s con keytag %d y algoritmo %d",
			rrsig.SignerName, rrsig.KeyTag, rrsig.Algorithm)
	}
	if !rrsig.ValidityPeriod(time.Now()) {
		return fmt.Errorf("la firma está fuera de su periodo de validez")
	}
	if err := rrsig.Verify(key, rrset); err != nil {
		return fmt.Errorf("verificación criptográfica fallida: %w", err)
	}
	return nil
}

func keyRingID(owner string, keyTag uint16, algorithm uint8) string {
	return fmt.Sprintf("%s/%d/%d", dns.Fqdn(strings.ToLower(owner)), keyTag, algorithm)
}

func distinctAlgorithms(keys []*dns.DNSKEY) []int {
	seen := make(map[int]bool)
	algorithms := []int{}
	for _, key := range keys {
		alg := int(key.Algorithm)
		if !seen[alg] {
			seen[alg] = true
			algorithms = append(algorithms, alg)
		}
	}
	sort.Ints(algorithms)
	return algorithms
}

func typedRecords[T dns.RR](rrs []dns.RR) []T {
	var out []T
	for _, rr := range rrs {
		if typed, ok := rr.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func recordsOfType(rrs []dns.RR, qtype uint16) []dns.RR {
	var out []dns.RR
	for _, rr := range rrs {
		if rr.Header().Rrtype == qtype {
			out = append(out, rr)
		}
	}
	return out
}

func coveringRRSIG(rrs []dns.RR, covered uint16) *dns.RRSIG {
	for _, rr := range rrs {
		if sig, ok := rr.(*dns.RRSIG); ok && sig.TypeCovered == covered {
			return sig
		}
	}
	return nil
}
