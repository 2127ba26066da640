package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trialsight/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the trial assistant (interactive)",
	RunE: func(cmd *cobra.Command, args []string) error {
		greeting, err := core.OpenAssistant(cmd.Context())
		if err != nil {
			return err
		}
		trial := core.ActiveTrial()
		fmt.Printf("TrialSight assistant - %s (%s). Type 'exit' to leave.\n\n", trial.Name, trial.ProtocolID)
		fmt.Printf("assistant> %s\n", greeting.Text)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("you> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}

			turn, err := core.SendChatMessage(cmd.Context(), line)
			if errors.Is(err, assistant.ErrBusy) {
				fmt.Println("assistant> One moment - still working on your last message.")
				continue
			}
			if err != nil {
				return err
			}
			fmt.Printf("assistant> %s\n", turn.Text)
		}
		return scanner.Err()
	},
}
