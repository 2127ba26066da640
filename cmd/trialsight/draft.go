package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var draftEmailCmd = &cobra.Command{
	Use:   "draft-email TASK_ID",
	Short: "Draft a site-coordinator email about a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := core.DraftEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(draft)
		return nil
	},
}
