// =============================================================================
// internal/resolver/resolver.go - Recursive and authoritative DNS queries
// =============================================================================
package resolver

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every individual network query.
const DefaultTimeout = 3 * time.Second

// Options configures a Client.
type Options struct {
	// Nameservers are the stub resolvers used for recursive queries, tried
	// in order. Empty means "read /etc/resolv.conf, fall back to 8.8.8.8".
	Nameservers []string
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Client issues recursive queries through configured stub resolvers and raw
// authoritative queries against explicit server IPs.
type Client struct {
	c       *dns.Client
	servers []string
	timeout time.Duration
	log     zerolog.Logger
}

// NewClient creates a client with default options.
func NewClient() *Client {
	return NewClientWithOptions(Options{})
}

// NewClientWithOptions creates a client with custom options.
func NewClientWithOptions(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	servers := opts.Nameservers
	if len(servers) == 0 {
		servers = systemNameservers()
	}
	return &Client{
		c:       &dns.Client{Net: "udp", Timeout: opts.Timeout},
		servers: servers,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
}

// systemNameservers reads the host stub configuration.
func systemNameservers() []string {
	if cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(cfg.Servers) > 0 {
		return cfg.Servers
	}
	return []string{"8.8.8.8"}
}

// Nameservers returns the configured stub resolver addresses.
func (c *Client) Nameservers() []string {
	return c.servers
}

// Recursive resolves name/qtype through the configured stub resolvers and
// classifies the result. Network failures against one server fall through to
// the next; every other response is final.
func (c *Client) Recursive(ctx context.Context, name string, qtype uint16) Outcome {
	var last Outcome
	for _, server := range c.servers {
		last = c.RecursiveAt(ctx, server, name, qtype)
		if last.Reason != ReasonTimeout && last.Reason != ReasonNetworkError {
			return last
		}
	}
	return last
}

// RecursiveAt resolves name/qtype against a single resolver address.
func (c *Client) RecursiveAt(ctx context.Context, server, name string, qtype uint16) Outcome {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	resp, _, err := c.c.ExchangeContext(ctx, msg, withPort(server))
	if err != nil {
		c.log.Debug().Err(err).Str("server", server).Str("name", name).
			Uint16("qtype", qtype).Msg("recursive query failed")
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return notFound(ReasonTimeout, err.Error())
		}
		return notFound(ReasonNetworkError, err.Error())
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		// Recursive answers may carry a CNAME chain; keep only the records
		// of the type that was asked for.
		rrs := answersOfType(resp.Answer, qtype)
		if len(rrs) == 0 {
			return notFound(ReasonNoAnswer, "")
		}
		return found(rrs)
	case dns.RcodeNameError:
		return notFound(ReasonNXDomain, "")
	default:
		return notFound(ReasonProtocolError, dns.RcodeToString[resp.Rcode])
	}
}

// Authoritative sends one UDP query directly to serverIP with the
// recursion-desired flag cleared and the DNSSEC-OK flag set. It returns the
// first answer-section record set, or nil when the answer is empty (for
// example a delegation-only response) or the query errors or times out.
// Absence is a valid signal here, never an error: no retries are performed.
func (c *Client) Authoritative(ctx context.Context, serverIP, name string, qtype uint16) *RecordSet {
	resp, err := c.AuthoritativeMsg(ctx, serverIP, name, qtype)
	if err != nil || resp == nil || len(resp.Answer) == 0 {
		return nil
	}
	first := resp.Answer[0].Header()
	var rrs []dns.RR
	for _, rr := range resp.Answer {
		h := rr.Header()
		if h.Name == first.Name && h.Rrtype == first.Rrtype {
			rrs = append(rrs, rr)
		}
	}
	return NewRecordSet(rrs...)
}

// AuthoritativeMsg performs the same non-recursive DO-bit query as
// Authoritative but hands back the whole response message, so callers can
// inspect covering RRSIGs alongside the data records.
func (c *Client) AuthoritativeMsg(ctx context.Context, serverIP, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = false
	msg.SetEdns0(4096, true)

	resp, _, err := c.c.ExchangeContext(ctx, msg, withPort(serverIP))
	if err != nil {
		c.log.Debug().Err(err).Str("server", serverIP).Str("name", name).
			Uint16("qtype", qtype).Msg("authoritative query failed")
		return nil, err
	}
	return resp, nil
}

func answersOfType(answer []dns.RR, qtype uint16) []dns.RR {
	var rrs []dns.RR
	for _, rr := range answer {
		if rr.Header().Rrtype == qtype {
			rrs = append(rrs, rr)
		}
	}
	return rrs
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}
