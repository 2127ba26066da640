package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trialsight/internal/types"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Work with the active trial's task board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTasks()
	},
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks for the active trial",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTasks()
	},
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move TASK_ID STATUS",
	Short: "Move a task (Todo, InProgress, Review, Done)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := core.UpdateTaskStatus(args[0], types.TaskStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", task.Title, task.Status.Label())
		return nil
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done TASK_ID",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := core.UpdateTaskStatus(args[0], types.TaskDone)
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", task.Title, task.Status.Label())
		return nil
	},
}

func listTasks() error {
	trial := core.ActiveTrial()
	tasks := core.ProjectEntities().Tasks
	fmt.Printf("Tasks for %s (%s):\n", trial.Name, trial.ProtocolID)
	if len(tasks) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, t := range tasks {
		fmt.Printf("  [%s] %-11s %-8s %s\n", t.ID, t.Status.Label(), t.Priority, t.Title)
		if t.Source == types.SourceAI {
			fmt.Printf("      AI-generated from document %s, due %s\n", t.RelatedDocID, t.DueDate.Format("2006-01-02"))
		}
	}
	return nil
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksMoveCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
}
