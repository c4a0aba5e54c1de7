package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimbusworks/nimbus/internal/travel"
)

var kbDocsDir string

var kbDocsCmd = &cobra.Command{
	Use:   "kb-docs",
	Short: "Export destination documents for knowledge base ingestion",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := travel.WriteKnowledgeBaseDocs(kbDocsDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d destination documents to %s\n",
			len(travel.Destinations()), kbDocsDir)
		return nil
	},
}

func init() {
	kbDocsCmd.Flags().StringVarP(&kbDocsDir, "out", "o", "kb-docs", "output directory")
}
