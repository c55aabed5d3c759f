package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/mailroles/internal/rolemap"
	"github.com/lu-zhengda/mailroles/internal/settings"
)

func newDefaultPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default-path",
		Short: "Show or change the default container path",
	}
	cmd.AddCommand(newDefaultPathShowCmd())
	cmd.AddCommand(newDefaultPathSetCmd())
	return cmd
}

func newDefaultPathShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the default container path",
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

			value := settings.New(db, cfg.Roles.DefaultContainerPath).DefaultContainerPath()
			if jsonFlag {
				return printJSON(jsonSetting{Key: settings.KeyDefaultContainerPath, Value: value})
			}
			fmt.Println(value)
			return nil
		},
	}
}

func newDefaultPathSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path>",
		Short: "Change the default container path",
		Args:  cobra.ExactArgs(1),
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

			s := settings.New(db, cfg.Roles.DefaultContainerPath)
			field := rolemap.NewDefaultPathField(s)
			field.Focus()
			field.Edit(args[0])
			field.Blur()

			if jsonFlag {
				return printJSON(jsonSetting{Key: settings.KeyDefaultContainerPath, Value: field.Value()})
			}
			fmt.Printf("Default container path: %s\n", field.Value())
			return nil
		},
	}
}
