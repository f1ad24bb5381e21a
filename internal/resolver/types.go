// =============================================================================
// internal/resolver/types.go - Record set and lookup outcome types
// =============================================================================
package resolver

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Reason classifies why a lookup produced no record set.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNXDomain      Reason = "NXDOMAIN"
	ReasonNoAnswer      Reason = "NO_ANSWER"
	ReasonProtocolError Reason = "PROTOCOL_ERROR"
	ReasonTimeout       Reason = "TIMEOUT"
	ReasonNetworkError  Reason = "NETWORK_ERROR"
)

// RecordSet holds the answer records for one (name, type) pair. A nil
// *RecordSet means the lookup produced nothing (distinct from an empty
// answer, which is reported as a NO_ANSWER outcome instead).
type RecordSet struct {
	rrs []dns.RR
}

// NewRecordSet builds a record set from parsed resource records.
func NewRecordSet(rrs ...dns.RR) *RecordSet {
	if len(rrs) == 0 {
		return nil
	}
	return &RecordSet{rrs: rrs}
}

// Texts returns the rdata-only text of every record, in answer order.
func (rs *RecordSet) Texts() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, 0, len(rs.rrs))
	for _, rr := range rs.rrs {
		out = append(out, RdataText(rr))
	}
	return out
}

// TTL returns the TTL shared by the set (taken from the first record).
func (rs *RecordSet) TTL() uint32 {
	if rs == nil || len(rs.rrs) == 0 {
		return 0
	}
	return rs.rrs[0].Header().Ttl
}

// Records exposes the underlying resource records for callers that need
// typed access (DS, DNSKEY, RRSIG).
func (rs *RecordSet) Records() []dns.RR {
	if rs == nil {
		return nil
	}
	return rs.rrs
}

// Len returns the number of records in the set.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rrs)
}

// Outcome is the tagged result of one recursive lookup: either a record set
// or an absence reason. Exactly one of the two is populated.
type Outcome struct {
	Set    *RecordSet
	Reason Reason
	Detail string
}

// Found reports whether the lookup yielded at least one record.
func (o Outcome) Found() bool {
	return o.Set.Len() > 0
}

// Texts is shorthand for the record texts of a found outcome.
func (o Outcome) Texts() []string {
	return o.Set.Texts()
}

func found(rrs []dns.RR) Outcome {
	return Outcome{Set: NewRecordSet(rrs...)}
}

func notFound(reason Reason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// RdataText renders a record the way zone operators read it: just the rdata,
// without the owner/TTL/class header.
func RdataText(rr dns.RR) string {
	switch r := rr.(type) {
	case *dns.A:
		return r.A.String()
	case *dns.AAAA:
		return r.AAAA.String()
	case *dns.NS:
		return r.Ns
	case *dns.CNAME:
		return r.Target
	case *dns.PTR:
		return r.Ptr
	case *dns.MX:
		return fmt.Sprintf("%d %s", r.Preference, r.Mx)
	case *dns.TXT:
		quoted := make([]string, 0, len(r.Txt))
		for _, s := range r.Txt {
			quoted = append(quoted, `"`+s+`"`)
		}
		return strings.Join(quoted, " ")
	case *dns.SOA:
		return fmt.Sprintf("%s %s %d %d %d %d %d",
			r.Ns, r.Mbox, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minttl)
	case *dns.DS:
		return fmt.Sprintf("%d %d %d %s", r.KeyTag, r.Algorithm, r.DigestType, strings.ToUpper(r.Digest))
	case *dns.DNSKEY:
		return fmt.Sprintf("%d %d %d %s", r.Flags, r.Protocol, r.Algorithm, r.PublicKey)
	default:
		// Fall back to the full presentation form minus the header prefix.
		return strings.TrimSpace(strings.TrimPrefix(rr.String(), rr.Header().String()))
	}
}
