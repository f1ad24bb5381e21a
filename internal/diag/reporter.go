// =============================================================================
// internal/diag/reporter.go - Report orchestration shared by all checks
// =============================================================================
package diag

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/dnsdiag/dnsdiag/internal/eventlog"
	"github.com/dnsdiag/dnsdiag/internal/resolver"
	"github.com/miekg/dns"
)

// Querier is the resolver capability the reporters depend on. The concrete
// implementation is resolver.Client; tests inject stubs.
type Querier interface {
	// Recursive resolves through the configured stub resolvers.
	Recursive(ctx context.Context, name string, qtype uint16) resolver.Outcome
	// RecursiveAt resolves against one explicit resolver address.
	RecursiveAt(ctx context.Context, server, name string, qtype uint16) resolver.Outcome
	// Authoritative sends a single non-recursive DO-bit UDP query; nil means
	// no usable answer (a valid signal, not an error).
	Authoritative(ctx context.Context, serverIP, name string, qtype uint16) *resolver.RecordSet
	// AuthoritativeMsg is the same query exposing the full response message.
	AuthoritativeMsg(ctx context.Context, serverIP, name string, qtype uint16) (*dns.Msg, error)
	// Nameservers lists the configured stub resolver addresses.
	Nameservers() []string
}

// Reporter runs the diagnostic checks. Each entry point is independent:
// it takes a domain, performs its own queries, and returns one
// self-contained report. No report depends on another's output.
type Reporter struct {
	q      Querier
	cfg    Config
	log    zerolog.Logger
	events *eventlog.Log
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithConfig overrides the default policy configuration.
func WithConfig(cfg Config) Option {
	return func(r *Reporter) { r.cfg = cfg }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reporter) { r.log = log }
}

// WithEventLog attaches the diagnostic event sink.
func WithEventLog(events *eventlog.Log) Option {
	return func(r *Reporter) { r.events = events }
}

// NewReporter builds a Reporter over the given querier. Every lookup the
// reporter issues is bounded by the configured per-query timeout.
func NewReporter(q Querier, opts ...Option) *Reporter {
	r := &Reporter{q: q, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.cfg = r.cfg.withDefaults()
	r.q = deadlineQuerier{next: q, timeout: r.cfg.QueryTimeout}
	return r
}

// deadlineQuerier attaches the per-query timeout to every lookup, so a
// querier that ignores deadlines of its own cannot stall a report.
type deadlineQuerier struct {
	next    Querier
	timeout time.Duration
}

func (d deadlineQuerier) Recursive(ctx context.Context, name string, qtype uint16) resolver.Outcome {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.next.Recursive(ctx, name, qtype)
}

func (d deadlineQuerier) RecursiveAt(ctx context.Context, server, name string, qtype uint16) resolver.Outcome {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.next.RecursiveAt(ctx, server, name, qtype)
}

func (d deadlineQuerier) Authoritative(ctx context.Context, serverIP, name string, qtype uint16) *resolver.RecordSet {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.next.Authoritative(ctx, serverIP, name, qtype)
}

func (d deadlineQuerier) AuthoritativeMsg(ctx context.Context, serverIP, name string, qtype uint16) (*dns.Msg, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.next.AuthoritativeMsg(ctx, serverIP, name, qtype)
}

func (d deadlineQuerier) Nameservers() []string {
	return d.next.Nameservers()
}

// emit appends one best-effort diagnostic event recording the tool name,
// domain, wall-clock duration and serialized output size.
func (r *Reporter) emit(tool, domain string, start time.Time, report any) {
	out, err := json.Marshal(report)
	if err != nil {
		r.log.Debug().Err(err).Str("tool", tool).Msg("report serialization for event log failed")
		return
	}
	dur := time.Since(start)
	r.events.Append(tool, domain, dur, len(out))
	r.log.Debug().Str("tool", tool).Str("dominio", domain).
		Dur("dur", dur).Int("out_size", len(out)).Msg("report complete")
}
