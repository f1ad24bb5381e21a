// =============================================================================
// internal/resolver/resolver_test.go - Query classification tests
// =============================================================================
package resolver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, handler dns.Handler) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

func testRR(t *testing.T, text string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(text)
	require.NoError(t, err)
	return rr
}

// zoneHandler serves a tiny fixed zone whose names encode the behavior under
// test. auth.test. refuses queries that carry the RD flag or lack the DO bit.
func zoneHandler(t *testing.T) dns.Handler {
	return dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		q := req.Question[0]
		switch {
		case q.Name == "www.test." && q.Qtype == dns.TypeA:
			m.Answer = []dns.RR{
				testRR(t, "www.test. 60 IN CNAME host.test."),
				testRR(t, "host.test. 60 IN A 192.0.2.1"),
			}
		case q.Name == "nx.test.":
			m.Rcode = dns.RcodeNameError
		case q.Name == "empty.test.":
			// Success with an empty answer section.
		case q.Name == "refused.test.":
			m.Rcode = dns.RcodeRefused
		case q.Name == "auth.test." && q.Qtype == dns.TypeA:
			opt := req.IsEdns0()
			if req.RecursionDesired || opt == nil || !opt.Do() {
				m.Rcode = dns.RcodeRefused
				break
			}
			m.Answer = []dns.RR{
				testRR(t, "auth.test. 60 IN A 192.0.2.10"),
				testRR(t, "auth.test. 60 IN A 192.0.2.11"),
				testRR(t, "other.test. 60 IN A 192.0.2.12"),
			}
		}
		_ = w.WriteMsg(m)
	})
}

func newTestClient(t *testing.T, servers ...string) *Client {
	t.Helper()
	return NewClientWithOptions(Options{
		Nameservers: servers,
		Timeout:     500 * time.Millisecond,
	})
}

func TestRecursiveAtFiltersCNAMEChain(t *testing.T) {
	addr := startServer(t, zoneHandler(t))
	c := newTestClient(t, addr)

	out := c.RecursiveAt(context.Background(), addr, "www.test", dns.TypeA)

	require.True(t, out.Found())
	assert.Equal(t, []string{"192.0.2.1"}, out.Texts())
	assert.Equal(t, ReasonNone, out.Reason)
}

func TestRecursiveAtNXDomain(t *testing.T) {
	addr := startServer(t, zoneHandler(t))
	c := newTestClient(t, addr)

	out := c.RecursiveAt(context.Background(), addr, "nx.test", dns.TypeA)

	assert.False(t, out.Found())
	assert.Equal(t, ReasonNXDomain, out.Reason)
}

func TestRecursiveAtNoAnswer(t *testing.T) {
	addr := startServer(t, zoneHandler(t))
	c := newTestClient(t, addr)

	out := c.RecursiveAt(context.Background(), addr, "empty.test", dns.TypeA)

	assert.False(t, out.Found())
	assert.Equal(t, ReasonNoAnswer, out.Reason)
}

func TestRecursiveAtProtocolError(t *testing.T) {
	addr := startServer(t, zoneHandler(t))
	c := newTestClient(t, addr)

	out := c.RecursiveAt(context.Background(), addr, "refused.test", dns.TypeA)

	assert.Equal(t, ReasonProtocolError, out.Reason)
	assert.Equal(t, "REFUSED", out.Detail)
}

func TestRecursiveAtTimeout(t *testing.T) {
	silent := startServer(t, dns.HandlerFunc(func(dns.ResponseWriter, *dns.Msg) {}))
	c := newTestClient(t, silent)

	out := c.RecursiveAt(context.Background(), silent, "www.test", dns.TypeA)

	assert.Equal(t, ReasonTimeout, out.Reason)
}

func TestRecursiveFallsThroughToNextServer(t *testing.T) {
	silent := startServer(t, dns.HandlerFunc(func(dns.ResponseWriter, *dns.Msg) {}))
	live := startServer(t, zoneHandler(t))
	c := newTestClient(t, silent, live)

	out := c.Recursive(context.Background(), "www.test", dns.TypeA)

	require.True(t, out.Found())
	assert.Equal(t, []string{"192.0.2.1"}, out.Texts())
}

func TestRecursiveDoesNotFallThroughOnNXDomain(t *testing.T) {
	first := startServer(t, zoneHandler(t))
	second := startServer(t, dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		m.Answer = []dns.RR{testRR(t, "nx.test. 60 IN A 192.0.2.99")}
		_ = w.WriteMsg(m)
	}))
	c := newTestClient(t, first, second)

	// NXDOMAIN from the first server is authoritative for the outcome; the
	// second server must never be consulted.
	out := c.Recursive(context.Background(), "nx.test", dns.TypeA)

	assert.Equal(t, ReasonNXDomain, out.Reason)
}

func TestAuthoritativeKeepsFirstRRsetOnly(t *testing.T) {
	addr := startServer(t, zoneHandler(t))
	c := newTestClient(t, addr)

	set := c.Authoritative(context.Background(), addr, "auth.test", dns.TypeA)

	require.NotNil(t, set)
	assert.Equal(t, []string{"192.0.2.10", "192.0.2.11"}, set.Texts())
}

func TestAuthoritativeNilOnEmptyAnswer(t *testing.T) {
	addr := startServer(t, zoneHandler(t))
	c := newTestClient(t, addr)

	assert.Nil(t, c.Authoritative(context.Background(), addr, "empty.test", dns.TypeA))
}

func TestAuthoritativeNilOnTimeout(t *testing.T) {
	silent := startServer(t, dns.HandlerFunc(func(dns.ResponseWriter, *dns.Msg) {}))
	c := newTestClient(t, silent)

	assert.Nil(t, c.Authoritative(context.Background(), silent, "auth.test", dns.TypeA))
}

func TestWithPort(t *testing.T) {
	assert.Equal(t, "9.9.9.9:53", withPort("9.9.9.9"))
	assert.Equal(t, "9.9.9.9:5353", withPort("9.9.9.9:5353"))
	assert.Equal(t, "[2620:fe::fe]:53", withPort("2620:fe::fe"))
}
