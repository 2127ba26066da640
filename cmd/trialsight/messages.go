package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Work with the active trial's inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listMessages()
	},
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages for the active trial",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listMessages()
	},
}

var messagesReadCmd = &cobra.Command{
	Use:   "read MESSAGE_ID",
	Short: "Show a message and mark it as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := core.MarkMessageRead(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("From:    %s\n", msg.Sender)
		fmt.Printf("Subject: %s\n", msg.Subject)
		fmt.Printf("Date:    %s\n\n", msg.Timestamp.Format("2006-01-02 15:04"))
		fmt.Println(msg.Content)
		return nil
	},
}

var messagesReplyCmd = &cobra.Command{
	Use:   "reply MESSAGE_ID",
	Short: "Draft an AI reply to a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := core.DraftReply(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(draft)
		return nil
	},
}

func listMessages() error {
	trial := core.ActiveTrial()
	messages := core.ProjectEntities().Messages
	fmt.Printf("Inbox for %s (%d unread):\n", trial.Name, core.UnreadMessages())
	for _, m := range messages {
		flag := " "
		if !m.Read {
			flag = "●"
		}
		fmt.Printf("  %s [%s] %-24s %s\n", flag, m.ID, m.Sender, m.Subject)
	}
	return nil
}

func init() {
	messagesCmd.AddCommand(messagesListCmd)
	messagesCmd.AddCommand(messagesReadCmd)
	messagesCmd.AddCommand(messagesReplyCmd)
}
