package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate SCENARIO...",
	Short: "Run a risk simulation for the active trial",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := core.RunSimulation(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Printf("Overall risk score: %d/100\n\n", result.OverallRiskScore)
		fmt.Println(result.ExecutiveSummary)
		for _, s := range result.Scenarios {
			fmt.Printf("\n[%s] %s\n", s.RiskLevel, s.Category)
			fmt.Printf("  %s\n", s.Description)
			fmt.Printf("  Mitigation: %s\n", s.MitigationStrategy)
		}
		return nil
	},
}
