package cli

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailroles/internal/app"
	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/store"
)

func newSyncCmd() *cobra.Command {
	var accountFlag string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull folders and labels from the mail server",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var accounts []domain.Account
			if allFlag {
				accounts, err = db.ListAccounts(ctx)
				if err != nil {
					return fmt.Errorf("failed to list accounts: %w", err)
				}
			} else {
				account, err := resolveAccount(ctx, db, accountFlag)
				if err != nil {
					return err
				}
				accounts = []domain.Account{*account}
			}

			if hasGmail(accounts) {
				if err := resolveGmailCredentials(cfg); err != nil {
					return err
				}
			}

			tokenStore := store.NewKeyringTokenStore()
			results := make([]jsonSyncResult, 0, len(accounts))
			for _, a := range accounts {
				svc := app.NewSyncService(db, newProvider(a, tokenStore), a.ID, nil, clockwork.NewRealClock())
				if !jsonFlag {
					fmt.Printf("Syncing account %s...\n", a.ID)
				}
				n, err := svc.Sync(ctx)
				if err != nil {
					return fmt.Errorf("failed to sync %s: %w", a.ID, err)
				}
				results = append(results, jsonSyncResult{AccountID: a.ID, Containers: n})
			}

			if jsonFlag {
				return printJSON(results)
			}

			for _, r := range results {
				fmt.Printf("%s: %d containers\n", r.AccountID, r.Containers)
			}
			fmt.Println("Sync complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&accountFlag, "account", "", "account ID to sync (defaults to config default or first account)")
	cmd.Flags().BoolVar(&allFlag, "all", false, "sync every account")
	return cmd
}
