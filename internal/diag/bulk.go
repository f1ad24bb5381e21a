// =============================================================================
// internal/diag/bulk.go - Bulk diagnostics over a domain list
// =============================================================================
package diag

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// BulkCheck names one of the diagnostic entry points for bulk runs.
type BulkCheck string

const (
	BulkCheckHealth      BulkCheck = "health"
	BulkCheckMailPolicy  BulkCheck = "mail"
	BulkCheckDNSSEC      BulkCheck = "dnssec"
	BulkCheckPropagation BulkCheck = "propagation"
)

// BulkResult is the outcome of one domain within a bulk run. Report holds
// whichever report type the selected check produces.
type BulkResult struct {
	Domain   string        `json:"domain"`
	Report   any           `json:"report"`
	Duration time.Duration `json:"duration"`
}

// BulkSummary aggregates a whole bulk run.
type BulkSummary struct {
	Check        BulkCheck     `json:"check"`
	TotalDomains int           `json:"total_domains"`
	Duration     time.Duration `json:"duration"`
	Results      []BulkResult  `json:"results"`
}

// ReadDomainsFromFile reads domains from a file, one per line, skipping
// blank lines and # comments.
func ReadDomainsFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var domains []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		domain := strings.TrimSpace(scanner.Text())
		if domain == "" || strings.HasPrefix(domain, "#") {
			continue
		}
		domains = append(domains, domain)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("no domains found in file")
	}
	return domains, nil
}

// Bulk runs the selected check for every domain using a bounded worker
// pool. Individual reports never fail (each degrades to findings), so every
// domain produces a result.
func (r *Reporter) Bulk(ctx context.Context, check BulkCheck, domains []string) (*BulkSummary, error) {
	start := time.Now()

	run := r.bulkRunner(check)
	if run == nil {
		return nil, fmt.Errorf("unknown bulk check %q", check)
	}

	domainChan := make(chan string, len(domains))
	for _, domain := range domains {
		domainChan <- domain
	}
	close(domainChan)

	resultChan := make(chan BulkResult, len(domains))
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.BulkConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for domain := range domainChan {
				t0 := time.Now()
				report := run(ctx, domain)
				resultChan <- BulkResult{
					Domain:   domain,
					Report:   report,
					Duration: time.Since(t0),
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]BulkResult, 0, len(domains))
	for result := range resultChan {
		results = append(results, result)
	}

	return &BulkSummary{
		Check:        check,
		TotalDomains: len(domains),
		Duration:     time.Since(start),
		Results:      results,
	}, nil
}

func (r *Reporter) bulkRunner(check BulkCheck) func(context.Context, string) any {
	switch check {
	case BulkCheckHealth:
		return func(ctx context.Context, d string) any { return r.Health(ctx, d) }
	case BulkCheckMailPolicy:
		return func(ctx context.Context, d string) any { return r.MailPolicy(ctx, d) }
	case BulkCheckDNSSEC:
		return func(ctx context.Context, d string) any { return r.DNSSEC(ctx, d) }
	case BulkCheckPropagation:
		return func(ctx context.Context, d string) any { return r.Propagation(ctx, d, nil) }
	default:
		return nil
	}
}
