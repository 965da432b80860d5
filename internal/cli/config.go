package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

// configCommand creates the "config" command and its subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and manage preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadAppConfig(c.configPath())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.Out, c.configPath())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.SaveAppConfig(c.configPath(), model.DefaultAppConfig()); err != nil {
				return err
			}
			printSuccess(c.Out, "Configuration reset")
			printFile(c.Out, c.configPath())
			return nil
		},
	})

	cmd.AddCommand(c.configBackupCommand())
	cmd.AddCommand(c.configRestoreCommand())
	return cmd
}

// configBackupCommand creates "config backup".
func (c *CLI) configBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Export config, custom profiles and run history to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			backup, err := project.CollectBackup(ctx, cfg, model.CustomProfiles, store)
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], backup); err != nil {
				return err
			}
			printSuccess(c.Out, "Backed up %d profiles and %d runs", len(backup.Profiles), len(backup.Runs))
			printFile(c.Out, args[0])
			return nil
		},
	}
}

// configRestoreCommand creates "config restore".
func (c *CLI) configRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore config, custom profiles and run history from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.configPath(), backup.Config); err != nil {
				return err
			}
			if len(backup.Profiles) > 0 {
				if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), backup.Profiles); err != nil {
					return err
				}
			}

			store, err := c.openStore(ctx, backup.Config)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := project.RestoreRuns(ctx, backup, store)
			if err != nil {
				return err
			}
			printSuccess(c.Out, "Restored config, %d profiles and %d runs", len(backup.Profiles), n)
			return nil
		},
	}
}
