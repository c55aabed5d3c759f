package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailroles/internal/task"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and run queued role changes",
	}
	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksRunCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var statusFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List role change tasks, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := task.Status(statusFlag)
			switch status {
			case "", task.StatusQueued, task.StatusDone, task.StatusFailed:
			default:
				return fmt.Errorf("unknown status %q (use queued, done, or failed)", statusFlag)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			queue, err := newQueue(db, cfg)
			if err != nil {
				return err
			}
			tasks, err := queue.List(cmd.Context(), status, limitFlag)
			if err != nil {
				return err
			}

			if jsonFlag {
				if tasks == nil {
					tasks = []task.ChangeRoleMapping{}
				}
				return printJSON(tasks)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tACCOUNT\tROLE\tPATH\tSTATUS\tUPDATED\tERROR")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					shortID(t.ID), t.AccountID, t.Role, t.Path, t.Status,
					t.UpdatedAt.Local().Format(time.DateTime), t.Error,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "only show tasks with this status (queued, done, failed)")
	cmd.Flags().IntVar(&limitFlag, "limit", 50, "max tasks to show (0 for all)")
	return cmd
}

func newTasksRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Apply every queued task now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			queue, err := newQueue(db, cfg)
			if err != nil {
				return err
			}
			n, err := queue.RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to run tasks: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonRunResult{Processed: n})
			}
			fmt.Printf("Processed %d task(s).\n", n)
			return nil
		},
	}
}

// shortID trims a task ID for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
