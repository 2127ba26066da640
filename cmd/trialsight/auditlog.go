package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit trail, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := core.AuditEntries()
		if len(entries) == 0 {
			fmt.Println("No audit records for this session.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-4s  %-16s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Actor, e.Action, e.Details)
		}
		return nil
	},
}
