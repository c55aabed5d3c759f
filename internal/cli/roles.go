package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailroles/internal/config"
	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/rolemap"
	"github.com/lu-zhengda/mailroles/internal/store/sqlite"
	"github.com/lu-zhengda/mailroles/internal/task"
)

func newRolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Show and change role assignments",
	}
	cmd.AddCommand(newRolesShowCmd())
	cmd.AddCommand(newRolesCandidatesCmd())
	cmd.AddCommand(newRolesSetCmd())
	return cmd
}

func newRolesShowCmd() *cobra.Command {
	var accountFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the container assigned to each role",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			var accounts []domain.Account
			if accountFlag != "" {
				account, err := resolveAccount(ctx, db, accountFlag)
				if err != nil {
					return err
				}
				accounts = []domain.Account{*account}
			} else {
				accounts, err = db.ListAccounts(ctx)
				if err != nil {
					return fmt.Errorf("failed to list accounts: %w", err)
				}
			}

			snap, err := loadSnapshot(ctx, db)
			if err != nil {
				return err
			}
			sections := snap.Sections(accounts)

			if jsonFlag {
				return printJSON(toJSONAccountRoles(sections))
			}

			if len(sections) == 0 {
				fmt.Println("No accounts configured. Run 'mailroles account add' to add one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tROLE\tCONTAINER\tKIND")
			for _, s := range sections {
				if len(s.Roles) == 0 {
					fmt.Fprintf(w, "%s\t-\t(not synced)\t-\n", s.Account.ID)
					continue
				}
				for _, rs := range s.Roles {
					path, kind := "(unassigned)", "-"
					if rs.Current != nil {
						path, kind = rs.Current.Path, string(rs.Current.Kind)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Account.ID, rs.Role, path, kind)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "only show this account")
	return cmd
}

func newRolesCandidatesCmd() *cobra.Command {
	var accountFlag string

	cmd := &cobra.Command{
		Use:   "candidates <role>",
		Short: "List the containers that can hold a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := domain.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			account, err := resolveAccount(ctx, db, accountFlag)
			if err != nil {
				return err
			}
			snap, err := loadAccountSnapshot(ctx, db, account.ID)
			if err != nil {
				return err
			}
			if err := checkAssignable(snap, *account, role); err != nil {
				return err
			}
			candidates := snap.Candidates(*account, role)

			if jsonFlag {
				return printJSON(toJSONContainers(candidates))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tKIND\tROLE")
			for _, c := range candidates {
				current := string(c.Role)
				if current == "" {
					current = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Path, c.Kind, current)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID (defaults to config default or first account)")
	return cmd
}

func newRolesSetCmd() *cobra.Command {
	var accountFlag string
	var waitFlag bool

	cmd := &cobra.Command{
		Use:   "set <role> <path>",
		Short: "Assign a container to a role",
		Long:  "Queue a change that makes <path> the container for <role>. The change is applied by the task processor; use --wait to apply it now.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := domain.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}
			path := args[1]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			account, err := resolveAccount(ctx, db, accountFlag)
			if err != nil {
				return err
			}

			snap, err := loadAccountSnapshot(ctx, db, account.ID)
			if err != nil {
				return err
			}
			target, err := assignmentTarget(snap, *account, role, path)
			if err != nil {
				return err
			}

			queue, err := newQueue(db, cfg)
			if err != nil {
				return err
			}
			rolemap.NewDispatcher(queue).Dispatch(*account, role, target)

			if !waitFlag {
				if jsonFlag {
					return printJSON(jsonAction{OK: true, Action: "queued", AccountID: account.ID})
				}
				fmt.Printf("Queued: %s -> %s\n", role, path)
				return nil
			}

			if _, err := queue.RunOnce(ctx); err != nil {
				return fmt.Errorf("failed to apply queued tasks: %w", err)
			}
			snap, err = loadAccountSnapshot(ctx, db, account.ID)
			if err != nil {
				return err
			}
			if c, ok := snap.Current(account.ID, role); !ok || c.Path != path {
				return fmt.Errorf("role %s was not moved to %s; see 'mailroles tasks list --status failed'", role, path)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "assigned", AccountID: account.ID})
			}
			fmt.Printf("Assigned: %s -> %s\n", role, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID (defaults to config default or first account)")
	cmd.Flags().BoolVar(&waitFlag, "wait", false, "apply queued changes before returning")
	return cmd
}

// checkAssignable applies the role view's visibility rules.
func checkAssignable(snap *rolemap.Snapshot, account domain.Account, role domain.Role) error {
	if snap.SectionVisible(account, role) {
		return nil
	}
	if !snap.Synced(account.ID) {
		return fmt.Errorf("account %s has not been synced yet; run 'mailroles sync' first", account.ID)
	}
	return fmt.Errorf("role %s cannot be assigned for %s accounts", role, account.Provider)
}

// assignmentTarget returns the candidate container at path for role, the
// same choice the role picker would offer.
func assignmentTarget(snap *rolemap.Snapshot, account domain.Account, role domain.Role, path string) (domain.Container, error) {
	if err := checkAssignable(snap, account, role); err != nil {
		return domain.Container{}, err
	}
	for _, c := range snap.Candidates(account, role) {
		if c.Path == path {
			return c, nil
		}
	}
	for _, c := range snap.All[account.ID] {
		if c.Path == path {
			return domain.Container{}, fmt.Errorf("%s is a %s; %s must be held by a folder", path, c.Kind, role)
		}
	}
	return domain.Container{}, fmt.Errorf("no container %q in %s: %w", path, account.ID, domain.ErrContainerNotFound)
}

// loadSnapshot derives the current role assignments from the store.
func loadSnapshot(ctx context.Context, db *sqlite.DB) (*rolemap.Snapshot, error) {
	containers, err := db.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return rolemap.Derive(containers), nil
}

// loadAccountSnapshot derives the role assignments of a single account.
func loadAccountSnapshot(ctx context.Context, db *sqlite.DB, accountID string) (*rolemap.Snapshot, error) {
	containers, err := db.ListAccountContainers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return rolemap.Derive(containers), nil
}

// newQueue creates a task queue without a live registry to notify.
func newQueue(db *sqlite.DB, cfg *config.Config) (*task.Queue, error) {
	interval, err := cfg.TaskPollInterval()
	if err != nil {
		return nil, err
	}
	return task.NewQueue(db, nil, clockwork.NewRealClock(), interval), nil
}
