// =============================================================================
// internal/cli/dnssec_commands.go - DNSSEC-related CLI commands
// =============================================================================
package cli

import (
	"github.com/spf13/cobra"
)

// NewDNSSECCommand creates the dnssec subcommand.
func NewDNSSECCommand() *cobra.Command {
	var cf commonFlags

	cmd := &cobra.Command{
		Use:   "dnssec [domain]",
		Short: "Check the DNSSEC chain of trust",
		Long: `Check a domain's DNSSEC posture: DS presence at the parent, DNSKEY
algorithms, DS/DNSKEY digest matching, and validation of the RRSIG covering
the SOA record set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, events := cf.reporter()
			defer events.Close()

			report := rep.DNSSEC(cmd.Context(), args[0])
			return cf.formatter().FormatDNSSEC(report, cmd.OutOrStdout())
		},
	}

	cf.register(cmd)
	return cmd
}
