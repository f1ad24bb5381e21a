// =============================================================================
// internal/diag/config.go - Reporter policy configuration
// =============================================================================
package diag

import (
	"time"

	"github.com/dnsdiag/dnsdiag/pkg/nameservers"
)

// Config holds the policy knobs of the diagnostic heuristics. All of them
// have working defaults; zero values are replaced by DefaultConfig values
// when a Reporter is built.
type Config struct {
	// QueryTimeout bounds each individual network query.
	QueryTimeout time.Duration

	// AuthServerCap limits how many discovered authoritative servers are
	// queried per record type.
	AuthServerCap int

	// WildcardLabelLength is the length of the random alphanumeric label
	// used by the wildcard probe.
	WildcardLabelLength int

	// TTLSkewFactor fires the TTL-skew finding when
	// max(TTL) >= factor * max(1, min(TTL)).
	TTLSkewFactor uint32

	// TXTSampleSize caps how many TXT values each propagation resolver
	// contributes.
	TXTSampleSize int

	// DefaultResolvers is the public resolver set used by propagation
	// comparisons when the caller supplies none.
	DefaultResolvers []string

	// BulkConcurrency bounds the worker pool of bulk runs.
	BulkConcurrency int
}

// DefaultConfig returns the reference policy values.
func DefaultConfig() Config {
	return Config{
		QueryTimeout:        3 * time.Second,
		AuthServerCap:       4,
		WildcardLabelLength: 10,
		TTLSkewFactor:       4,
		TXTSampleSize:       3,
		DefaultResolvers:    nameservers.DefaultResolverIPs(),
		BulkConcurrency:     5,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = def.QueryTimeout
	}
	if c.AuthServerCap <= 0 {
		c.AuthServerCap = def.AuthServerCap
	}
	if c.WildcardLabelLength <= 0 {
		c.WildcardLabelLength = def.WildcardLabelLength
	}
	if c.TTLSkewFactor == 0 {
		c.TTLSkewFactor = def.TTLSkewFactor
	}
	if c.TXTSampleSize <= 0 {
		c.TXTSampleSize = def.TXTSampleSize
	}
	if len(c.DefaultResolvers) == 0 {
		c.DefaultResolvers = def.DefaultResolvers
	}
	if c.BulkConcurrency <= 0 {
		c.BulkConcurrency = def.BulkConcurrency
	}
	return c
}
