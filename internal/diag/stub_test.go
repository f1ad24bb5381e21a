// =============================================================================
// internal/diag/stub_test.go - Stub querier shared by reporter tests
// =============================================================================
package diag

import (
	"context"
	"fmt"
	"testing"

	"github.com/miekg/dns"

	"github.com/dnsdiag/dnsdiag/internal/resolver"
)

// stubQuerier serves canned answers keyed by name and type. Unregistered
// names answer NXDOMAIN, unless wildcardA is set, in which case every
// unknown A query resolves (an "always resolves" zone).
type stubQuerier struct {
	recursive   map[string]resolver.Outcome
	perResolver map[string]resolver.Outcome
	auth        map[string]*resolver.RecordSet
	authMsgs    map[string]*dns.Msg
	wildcardA   []dns.RR
	servers     []string
}

func newStub() *stubQuerier {
	return &stubQuerier{
		recursive:   make(map[string]resolver.Outcome),
		perResolver: make(map[string]resolver.Outcome),
		auth:        make(map[string]*resolver.RecordSet),
		authMsgs:    make(map[string]*dns.Msg),
		servers:     []string{"127.0.0.53"},
	}
}

func qkey(name string, qtype uint16) string {
	return name + "|" + dns.TypeToString[qtype]
}

func skey(server, name string, qtype uint16) string {
	return server + "|" + qkey(name, qtype)
}

func (s *stubQuerier) answer(name string, qtype uint16, rrs ...dns.RR) {
	s.recursive[qkey(name, qtype)] = resolver.Outcome{Set: resolver.NewRecordSet(rrs...)}
}

func (s *stubQuerier) fail(name string, qtype uint16, reason resolver.Reason) {
	s.recursive[qkey(name, qtype)] = resolver.Outcome{Reason: reason}
}

func (s *stubQuerier) answerAt(server, name string, qtype uint16, rrs ...dns.RR) {
	s.perResolver[skey(server, name, qtype)] = resolver.Outcome{Set: resolver.NewRecordSet(rrs...)}
}

func (s *stubQuerier) answerAuth(server, name string, qtype uint16, rrs ...dns.RR) {
	s.auth[skey(server, name, qtype)] = resolver.NewRecordSet(rrs...)
}

func (s *stubQuerier) Recursive(_ context.Context, name string, qtype uint16) resolver.Outcome {
	if out, ok := s.recursive[qkey(name, qtype)]; ok {
		return out
	}
	if qtype == dns.TypeA && s.wildcardA != nil {
		return resolver.Outcome{Set: resolver.NewRecordSet(s.wildcardA...)}
	}
	return resolver.Outcome{Reason: resolver.ReasonNXDomain}
}

func (s *stubQuerier) RecursiveAt(_ context.Context, server, name string, qtype uint16) resolver.Outcome {
	if out, ok := s.perResolver[skey(server, name, qtype)]; ok {
		return out
	}
	return resolver.Outcome{Reason: resolver.ReasonNoAnswer}
}

func (s *stubQuerier) Authoritative(_ context.Context, serverIP, name string, qtype uint16) *resolver.RecordSet {
	return s.auth[skey(serverIP, name, qtype)]
}

func (s *stubQuerier) AuthoritativeMsg(_ context.Context, serverIP, name string, qtype uint16) (*dns.Msg, error) {
	if msg, ok := s.authMsgs[skey(serverIP, name, qtype)]; ok {
		return msg, nil
	}
	return nil, fmt.Errorf("no response from %s", serverIP)
}

func (s *stubQuerier) Nameservers() []string {
	return s.servers
}

func mustRR(t *testing.T, text string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(text)
	if err != nil {
		t.Fatalf("bad test record %q: %v", text, err)
	}
	return rr
}

func findingKinds(findings []Finding) []string {
	kinds := make([]string, 0, len(findings))
	for _, f := range findings {
		kinds = append(kinds, f.Kind)
	}
	return kinds
}
