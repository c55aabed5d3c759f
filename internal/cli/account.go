package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/provider/gmail"
	"github.com/lu-zhengda/mailroles/internal/provider/imap"
	"github.com/lu-zhengda/mailroles/internal/store"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage mail accounts",
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a mail account",
	}
	add.AddCommand(newAccountAddGmailCmd())
	add.AddCommand(newAccountAddIMAPCmd())
	cmd.AddCommand(add)
	cmd.AddCommand(newAccountListCmd())
	cmd.AddCommand(newAccountRemoveCmd())
	return cmd
}

func newAccountAddGmailCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "gmail",
		Short: "Add a Gmail account via OAuth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := resolveGmailCredentials(cfg); err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			tokenStore := store.NewKeyringTokenStore()

			// Use email as account ID if provided, otherwise use a temporary ID
			// that will be replaced after OAuth when we learn the real email.
			accountID := email
			if accountID == "" {
				accountID = fmt.Sprintf("gmail-%d", time.Now().UnixNano())
			}

			provider := gmail.New(accountID, tokenStore)

			ctx := cmd.Context()
			fmt.Println("Starting Gmail OAuth flow...")
			if err := provider.Authenticate(ctx); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			// If no email was provided, fetch it from the Gmail profile.
			if email == "" {
				profileEmail, err := provider.GetProfile(ctx)
				if err != nil {
					return fmt.Errorf("failed to get profile email: %w", err)
				}
				email = profileEmail

				// Re-save the token under the real email as account ID,
				// and clean up the temporary one.
				token, err := tokenStore.LoadToken(accountID)
				if err != nil {
					return fmt.Errorf("failed to reload token: %w", err)
				}
				if err := tokenStore.SaveToken(email, token); err != nil {
					return fmt.Errorf("failed to re-save token: %w", err)
				}
				if delErr := tokenStore.DeleteToken(accountID); delErr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to delete temporary token: %v\n", delErr)
				}
				accountID = email
			}

			account := &domain.Account{
				ID:          accountID,
				Email:       email,
				Provider:    domain.ProviderGmail,
				DisplayName: email,
				CreatedAt:   time.Now(),
			}

			if err := db.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to store account: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "add", Email: email, AccountID: accountID})
			}

			fmt.Printf("Account added: %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (auto-detected if omitted)")
	return cmd
}

func newAccountAddIMAPCmd() *cobra.Command {
	var (
		email    string
		server   string
		name     string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "imap",
		Short: "Add an IMAP account",
		Long:  "Add an IMAP account. The password is read from stdin and kept in the OS keyring.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := domain.ParseProvider(provider)
			if !ok || p == domain.ProviderGmail {
				return fmt.Errorf("unsupported provider %q (use imap or proton)", provider)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			password, err := readPassword(email)
			if err != nil {
				return err
			}

			account := &domain.Account{
				ID:          email,
				Email:       email,
				Provider:    p,
				DisplayName: name,
				Server:      server,
				CreatedAt:   time.Now(),
			}

			tokenStore := store.NewKeyringTokenStore()
			if err := tokenStore.SavePassword(account.ID, password); err != nil {
				return fmt.Errorf("failed to save password: %w", err)
			}

			ctx := cmd.Context()
			if err := imap.New(*account, tokenStore).Authenticate(ctx); err != nil {
				if delErr := tokenStore.DeletePassword(account.ID); delErr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to delete password: %v\n", delErr)
				}
				return err
			}

			if err := db.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to store account: %w", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "add", Email: email, AccountID: account.ID})
			}

			fmt.Printf("Account added: %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login and email address")
	cmd.Flags().StringVar(&server, "server", "", "IMAP server as host:port (implicit TLS)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&provider, "provider", string(domain.ProviderIMAP), "provider kind (imap or proton)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("server")
	return cmd
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line from stdin.
func readPassword(email string) (string, error) {
	var password string
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", email)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(b)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	return password, nil
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			accounts, err := db.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			states := make(map[string]store.SyncState, len(accounts))
			for _, a := range accounts {
				state, err := db.GetSyncState(ctx, a.ID)
				if err != nil {
					return err
				}
				states[a.ID] = *state
			}

			if jsonFlag {
				return printJSON(toJSONAccounts(accounts, states))
			}

			if len(accounts) == 0 {
				fmt.Println("No accounts configured. Run 'mailroles account add' to add one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tPROVIDER\tSERVER\tCONTAINERS\tLAST SYNC\tCREATED")
			for _, a := range accounts {
				server := a.Server
				if server == "" {
					server = "-"
				}
				state := states[a.ID]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					a.ID,
					a.Email,
					a.Provider,
					server,
					state.Containers,
					formatLastSync(state.LastSync),
					a.CreatedAt.Format(time.DateOnly),
				)
			}
			return w.Flush()
		},
	}
}

func newAccountRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [email]",
		Short: "Remove an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			accounts, err := db.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			var target *domain.Account
			for i := range accounts {
				if accounts[i].Email == email || accounts[i].ID == email {
					target = &accounts[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("account not found: %s", email)
			}

			if err := db.DeleteAccount(ctx, target.ID); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}

			// Non-fatal: secrets may already be gone.
			tokenStore := store.NewKeyringTokenStore()
			if target.Provider == domain.ProviderGmail {
				if err := tokenStore.DeleteToken(target.ID); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: could not remove token from keyring: %v\n", err)
				}
			} else if err := tokenStore.DeletePassword(target.ID); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not remove password from keyring: %v\n", err)
			}

			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "remove", Email: target.Email})
			}

			fmt.Printf("Account removed: %s\n", target.Email)
			return nil
		},
	}
}

// formatLastSync renders a sync timestamp in local time, or "never".
func formatLastSync(unix int64) string {
	if unix == 0 {
		return "never"
	}
	return time.Unix(unix, 0).Local().Format(time.DateTime)
}
