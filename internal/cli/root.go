package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailroles/internal/app"
	"github.com/lu-zhengda/mailroles/internal/config"
	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/logging"
	"github.com/lu-zhengda/mailroles/internal/provider"
	"github.com/lu-zhengda/mailroles/internal/provider/gmail"
	"github.com/lu-zhengda/mailroles/internal/provider/imap"
	"github.com/lu-zhengda/mailroles/internal/registry"
	"github.com/lu-zhengda/mailroles/internal/rolemap"
	"github.com/lu-zhengda/mailroles/internal/settings"
	"github.com/lu-zhengda/mailroles/internal/store"
	"github.com/lu-zhengda/mailroles/internal/store/sqlite"
	"github.com/lu-zhengda/mailroles/internal/task"
	"github.com/lu-zhengda/mailroles/internal/tui"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool
)

func NewRootCmd() *cobra.Command {
	var accountFlag string

	root := &cobra.Command{
		Use:     "mailroles",
		Short:   "Map mailbox roles to folders",
		Long:    "Choose which folder or label serves as inbox, sent, drafts, spam, archive and trash for each mail account.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				switch shell {
				case "bash":
					return cmd.Root().GenBashCompletion(os.Stdout)
				case "zsh":
					return cmd.Root().GenZshCompletion(os.Stdout)
				case "fish":
					return cmd.Root().GenFishCompletion(os.Stdout, true)
				default:
					return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// The terminal belongs to the TUI; logs go to a file.
			logFile, err := openLogFile()
			if err != nil {
				return err
			}
			defer logFile.Close()
			logging.Init(cfg.Log.Level, cfg.Log.Format, logFile)

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			accountID := accountFlag
			if accountID == "" {
				accountID = cfg.Accounts.Default
			}

			return runTUI(cmd.Context(), db, cfg, accountID)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("mailroles %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	root.Flags().MarkHidden("generate-completion")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.Flags().StringVar(&accountFlag, "account", "", "account ID to show first (defaults to config default or first account)")
	root.AddCommand(newAccountCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newRolesCmd())
	root.AddCommand(newDefaultPathCmd())
	root.AddCommand(newTasksCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// runTUI wires the registry, task processor and background syncs around the
// interactive view and tears them down when it exits.
func runTUI(ctx context.Context, db *sqlite.DB, cfg *config.Config, accountID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := registry.New(db)
	defer reg.Close()

	pollInterval, err := cfg.TaskPollInterval()
	if err != nil {
		return err
	}
	queue := task.NewQueue(db, reg, clockwork.NewRealClock(), pollInterval)
	go queue.Run(ctx)

	syncInterval, err := cfg.SyncInterval()
	if err != nil {
		return err
	}
	tokens := store.NewKeyringTokenStore()
	accounts, err := db.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if hasGmail(accounts) {
		if err := resolveGmailCredentials(cfg); err != nil {
			return err
		}
	}
	for _, a := range accounts {
		svc := app.NewSyncService(db, newProvider(a, tokens), a.ID, reg, clockwork.NewRealClock())
		go svc.Run(ctx, syncInterval)
	}

	return tui.Run(tui.Options{
		Registry:   reg,
		Dispatcher: rolemap.NewDispatcher(queue),
		Settings:   settings.New(db, cfg.Roles.DefaultContainerPath),
		Sync: func(ctx context.Context, a domain.Account) (int, error) {
			svc := app.NewSyncService(db, newProvider(a, tokens), a.ID, reg, clockwork.NewRealClock())
			return svc.Sync(ctx)
		},
		AccountID: accountID,
	})
}

// newProvider returns the container provider for an account.
func newProvider(a domain.Account, tokens *store.KeyringTokenStore) provider.ContainerProvider {
	if a.Provider == domain.ProviderGmail {
		return gmail.New(a.ID, tokens)
	}
	return imap.New(a, tokens)
}

func hasGmail(accounts []domain.Account) bool {
	for _, a := range accounts {
		if a.Provider == domain.ProviderGmail {
			return true
		}
	}
	return false
}

// openDB creates the data directory and opens the SQLite database.
func openDB() (*sqlite.DB, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mailroles.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openLogFile opens the TUI log file in the data directory for appending.
func openLogFile() (io.WriteCloser, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "mailroles.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveAccount determines which account to use: the flag, then the config
// default, then the first account in the database.
func resolveAccount(ctx context.Context, db *sqlite.DB, accountFlag string) (*domain.Account, error) {
	id := accountFlag
	if id == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		id = cfg.Accounts.Default
	}
	if id != "" {
		account, err := db.GetAccount(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load account %s: %w", id, err)
		}
		return account, nil
	}

	accounts, err := db.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured; run 'mailroles account add' first")
	}
	return &accounts[0], nil
}

// resolveGmailCredentials sets Gmail OAuth credentials using the first
// available source: config file, then environment variables.
func resolveGmailCredentials(cfg *config.Config) error {
	// 1. Config file
	if cfg.Gmail.ClientID != "" && cfg.Gmail.ClientSecret != "" {
		gmail.SetCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret)
		return nil
	}

	// 2. Environment variables
	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		gmail.SetCredentials(clientID, clientSecret)
		return nil
	}

	return gmail.EnsureCredentials()
}
