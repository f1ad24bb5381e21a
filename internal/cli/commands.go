// =============================================================================
// internal/cli/commands.go - CLI command definitions
// =============================================================================
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dnsdiag/dnsdiag/internal/diag"
	"github.com/dnsdiag/dnsdiag/internal/eventlog"
	"github.com/dnsdiag/dnsdiag/internal/output"
	"github.com/dnsdiag/dnsdiag/internal/resolver"
	"github.com/dnsdiag/dnsdiag/pkg/nameservers"
)

// commonFlags are shared by every diagnostic subcommand.
type commonFlags struct {
	nameserver string
	format     string
	timeout    time.Duration
	logPath    string
	verbose    bool
}

func (cf *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cf.nameserver, "nameserver", "n", "", "Stub resolver to use for recursive queries (IP address)")
	cmd.Flags().StringVarP(&cf.format, "format", "f", "table", "Output format (table, json)")
	cmd.Flags().DurationVar(&cf.timeout, "timeout", resolver.DefaultTimeout, "Per-query timeout")
	cmd.Flags().StringVar(&cf.logPath, "event-log", "", "Diagnostic event log path (default $DNS_DIAG_LOG or "+eventlog.DefaultPath+")")
	cmd.Flags().BoolVarP(&cf.verbose, "verbose", "v", false, "Enable debug logging")
}

func (cf *commonFlags) logger() zerolog.Logger {
	if !cf.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// eventSink opens the diagnostic event log named by the --event-log flag,
// falling back to the environment-configured path.
func (cf *commonFlags) eventSink() *eventlog.Log {
	if cf.logPath != "" {
		return eventlog.Open(cf.logPath)
	}
	return eventlog.FromEnv()
}

func (cf *commonFlags) reporter() (*diag.Reporter, *eventlog.Log) {
	log := cf.logger()
	cfg := diag.DefaultConfig()
	cfg.QueryTimeout = cf.timeout

	var servers []string
	if cf.nameserver != "" {
		servers = []string{cf.nameserver}
	}
	client := resolver.NewClientWithOptions(resolver.Options{
		Nameservers: servers,
		Timeout:     cfg.QueryTimeout,
		Logger:      log,
	})

	events := cf.eventSink()

	return diag.NewReporter(client,
		diag.WithConfig(cfg),
		diag.WithLogger(log),
		diag.WithEventLog(events),
	), events
}

func (cf *commonFlags) formatter() *output.Formatter {
	return output.NewFormatter(output.ParseFormat(cf.format))
}

// NewQueryCommand creates the query subcommand.
func NewQueryCommand() *cobra.Command {
	var cf commonFlags

	cmd := &cobra.Command{
		Use:   "query [domain] [record-type]",
		Short: "Query DNS records for a domain",
		Long: `Perform one recursive DNS query for a domain and record type.
Supports all common record types (A, AAAA, CNAME, MX, NS, TXT, SOA).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			qtype := dns.TypeA
			if len(args) > 1 {
				t, ok := dns.StringToType[strings.ToUpper(args[1])]
				if !ok {
					return fmt.Errorf("unknown record type %q", args[1])
				}
				qtype = t
			}

			var servers []string
			if cf.nameserver != "" {
				servers = []string{cf.nameserver}
			}
			client := resolver.NewClientWithOptions(resolver.Options{
				Nameservers: servers,
				Timeout:     cf.timeout,
				Logger:      cf.logger(),
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			out := client.Recursive(ctx, domain, qtype)
			if !out.Found() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s %s\n",
					domain, dns.TypeToString[qtype], out.Reason, out.Detail)
				return nil
			}
			for _, text := range out.Texts() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n",
					domain, out.Set.TTL(), dns.TypeToString[qtype], text)
			}
			return nil
		},
	}

	cf.register(cmd)
	return cmd
}

// NewHealthCommand creates the health subcommand.
func NewHealthCommand() *cobra.Command {
	var cf commonFlags

	cmd := &cobra.Command{
		Use:   "health [domain]",
		Short: "Compare recursive and authoritative views of a zone",
		Long: `Run the consolidated zone health check: recursive versus authoritative
answers for A/AAAA/NS/SOA, plus wildcard, TTL-skew and dangling-CNAME heuristics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, events := cf.reporter()
			defer events.Close()

			report := rep.Health(cmd.Context(), args[0])
			return cf.formatter().FormatHealth(report, cmd.OutOrStdout())
		},
	}

	cf.register(cmd)
	return cmd
}

// NewMailCommand creates the mail subcommand.
func NewMailCommand() *cobra.Command {
	var cf commonFlags

	cmd := &cobra.Command{
		Use:   "mail [domain]",
		Short: "Audit MX, SPF and DMARC records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, events := cf.reporter()
			defer events.Close()

			report := rep.MailPolicy(cmd.Context(), args[0])
			return cf.formatter().FormatMailPolicy(report, cmd.OutOrStdout())
		},
	}

	cf.register(cmd)
	return cmd
}

// NewPropagationCommand creates the propagation subcommand.
func NewPropagationCommand() *cobra.Command {
	var (
		cf            commonFlags
		resolversFlag string
		providerFlag  string
	)

	cmd := &cobra.Command{
		Use:   "propagation [domain]",
		Short: "Compare answers across public resolvers",
		Long: `Query a set of independent public resolvers and compute, per record
type, which records each resolver is missing relative to the union of all answers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ips []string
			for _, ip := range strings.Split(resolversFlag, ",") {
				if ip = strings.TrimSpace(ip); ip != "" {
					ips = append(ips, ip)
				}
			}
			if providerFlag != "" {
				for _, provider := range strings.Split(providerFlag, ",") {
					for _, server := range nameservers.ForProvider(strings.TrimSpace(provider)) {
						ips = append(ips, server.IP.String())
					}
				}
			}

			rep, events := cf.reporter()
			defer events.Close()

			report := rep.Propagation(cmd.Context(), args[0], ips)
			return cf.formatter().FormatPropagation(report, cmd.OutOrStdout())
		},
	}

	cf.register(cmd)
	cmd.Flags().StringVarP(&resolversFlag, "resolvers", "r", "", "Resolver IPs to compare (comma-separated)")
	cmd.Flags().StringVarP(&providerFlag, "providers", "p", "", "DNS providers to compare (comma-separated: cloudflare,google,quad9,opendns)")
	return cmd
}

// NewBulkCommand creates the bulk subcommand.
func NewBulkCommand() *cobra.Command {
	var (
		cf          commonFlags
		checkFlag   string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "bulk [file]",
		Short: "Run a diagnostic over a file of domains",
		Long: `Execute one diagnostic check for every domain in a file.
The file holds one domain per line; blank lines and # comments are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domains, err := diag.ReadDomainsFromFile(args[0])
			if err != nil {
				return err
			}

			cfg := diag.DefaultConfig()
			cfg.QueryTimeout = cf.timeout
			cfg.BulkConcurrency = concurrency

			log := cf.logger()
			var servers []string
			if cf.nameserver != "" {
				servers = []string{cf.nameserver}
			}
			client := resolver.NewClientWithOptions(resolver.Options{
				Nameservers: servers,
				Timeout:     cfg.QueryTimeout,
				Logger:      log,
			})
			events := cf.eventSink()
			defer events.Close()

			rep := diag.NewReporter(client,
				diag.WithConfig(cfg),
				diag.WithLogger(log),
				diag.WithEventLog(events),
			)

			summary, err := rep.Bulk(cmd.Context(), diag.BulkCheck(checkFlag), domains)
			if err != nil {
				return err
			}
			return cf.formatter().FormatBulk(summary, cmd.OutOrStdout())
		},
	}

	cf.register(cmd)
	cmd.Flags().StringVarP(&checkFlag, "check", "c", string(diag.BulkCheckHealth), "Check to run (health, mail, dnssec, propagation)")
	cmd.Flags().IntVar(&concurrency, "concurrency", diag.DefaultConfig().BulkConcurrency, "Worker pool size")
	return cmd
}
