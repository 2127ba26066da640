package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trialsight/internal/analysis"
	"trialsight/internal/types"
)

var analyzeDocType string

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Upload and analyze a document against the active trial's protocol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		out, err := core.AnalyzeDocument(cmd.Context(), analysis.Upload{
			Name:    info.Name(),
			Type:    types.DocType(analyzeDocType),
			Size:    humanSize(info.Size()),
			Content: string(data),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Document: %s (%s)\n", out.Document.Name, out.Document.Status)
		fmt.Printf("Risk score: %d/100\n\n", out.Result.RiskScore)
		fmt.Println(out.Result.Summary)
		if len(out.Result.Risks) > 0 {
			fmt.Println("\nIdentified risks:")
			for _, r := range out.Result.Risks {
				fmt.Printf("  - %s\n", r)
			}
		}
		if len(out.Tasks) > 0 {
			fmt.Println("\nGenerated tasks:")
			for _, t := range out.Tasks {
				fmt.Printf("  [%s] %-8s %s\n", t.ID, t.Priority, t.Title)
			}
		}
		return nil
	},
}

func humanSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/(1<<10))
	}
	return fmt.Sprintf("%d B", bytes)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDocType, "type", string(types.DocMonitoringReport),
		"document type (Protocol, Monitoring Report, Informed Consent, Lab Result, Regulatory)")
}
