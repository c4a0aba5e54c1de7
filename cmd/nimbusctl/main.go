// nimbusctl is the operations CLI: demo data seeding, knowledge base
// document export, model packaging, batch transform management, and
// pushing API keys to Secrets Manager.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "nimbusctl",
	Short:         "Operations for the nimbus demo applications",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(seedCmd, kbDocsCmd, packageModelCmd, transformCmd, pushSecretsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
