package main

import (
	"fmt"
	"os"

	"github.com/dnsdiag/dnsdiag/internal/cli"

	"github.com/spf13/cobra"
)

var version = "dev" // Will be set by ldflags during build

func main() {
	rootCmd := &cobra.Command{
		Use:   "dnsdiag",
		Short: "DNS diagnostic engine - zone health, DNSSEC, mail policy and propagation checks",
		Long: `Cross-check recursive resolvers against a domain's authoritative servers,
validate the DNSSEC chain of trust, audit MX/SPF/DMARC records, and measure
answer divergence across independent public resolvers.`,
		Version: version,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.NewQueryCommand())
	rootCmd.AddCommand(cli.NewHealthCommand())
	rootCmd.AddCommand(cli.NewMailCommand())
	rootCmd.AddCommand(cli.NewDNSSECCommand())
	rootCmd.AddCommand(cli.NewPropagationCommand())
	rootCmd.AddCommand(cli.NewBulkCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
