package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "List trials and show which one is active",
	RunE: func(cmd *cobra.Command, args []string) error {
		active := core.ActiveTrial()
		for _, t := range core.Trials() {
			marker := " "
			if t.ID == active.ID {
				marker = "*"
			}
			fmt.Printf("%s %-10s %-12s Phase %-4s %s\n", marker, t.ID, t.ProtocolID, t.Phase, t.Name)
			fmt.Printf("  %s\n", t.Description)
			fmt.Printf("  PI: %s | %s | Recruitment: %d/%d (%d%%)\n",
				t.Investigator, t.Status, t.CurrentRecruitment, t.TargetRecruitment, t.RecruitmentPercent())
		}
		return nil
	},
}
