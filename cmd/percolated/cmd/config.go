package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fenwick-labs/percolate/internal/config"
	"github.com/fenwick-labs/percolate/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage percolated configuration",
		Long: `Inspect and manage the user and project configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/percolated/config.yaml)
  3. Project config (.percolated.yaml, via --dir)
  4. Environment variables (PERCOLATED_*)`,
		Example: `  # Create the user config file
  percolated config init

  # Show the effective (merged) configuration
  percolated config show

  # Print the user config file path
  percolated config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigBackupCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the user configuration file",
		Long: `Create the user/global configuration file at
~/.config/percolated/config.yaml (or $XDG_CONFIG_HOME/percolated/config.yaml
if set), containing the hardcoded defaults as a starting point for
machine-wide overrides such as the server addresses or audit log path.`,
		Example: `  # Create the user config
  percolated config init

  # Back up and overwrite an existing one
  percolated config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Back up and overwrite an existing configuration")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show configuration from the requested source: the fully merged
result applied by 'percolated serve' (defaults + user + project + env), or
any one layer in isolation.`,
		Example: `  # Show the merged configuration
  percolated config show

  # Show only the user config, as JSON
  percolated config show --source user --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}

func newConfigBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the user configuration file",
		Long:  `Write a timestamped copy of the user config, pruning to the newest backups once the retention limit is exceeded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := output.NewAuto(cmd.OutOrStdout())

			path, err := config.BackupUserConfig()
			if err != nil {
				return err
			}
			if path == "" {
				w.Warning("No user configuration file to back up")
				w.Statusf("💡", "Run 'percolated config init' to create one")
				return nil
			}

			w.Successf("Backed up user configuration to %s", path)
			return nil
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [backup-path]",
		Short: "Restore the user configuration from a backup",
		Long: `Restore the user config from a backup produced by 'percolated config
backup' (or the automatic backup 'percolated config init --force' takes).
The current config, if any, is itself backed up first. With no argument,
restores the most recent backup.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := output.NewAuto(cmd.OutOrStdout())

			backupPath := ""
			if len(args) == 1 {
				backupPath = args[0]
			} else {
				backups, err := config.ListUserConfigBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					return fmt.Errorf("config restore: no backups found, pass a path explicitly")
				}
				backupPath = backups[0]
			}

			if err := config.RestoreUserConfig(backupPath); err != nil {
				return err
			}

			w.Successf("Restored user configuration from %s", backupPath)
			return nil
		},
	}

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	w := output.NewAuto(cmd.OutOrStdout())

	configPath := config.GetUserConfigPath()
	configDir := config.GetUserConfigDir()

	if config.UserConfigExists() {
		if !force {
			w.Warning("User configuration already exists")
			w.Statusf("📁", "Location: %s", configPath)
			w.Status("💡", "Use --force to back it up and overwrite it with current defaults")
			return nil
		}

		backupPath, err := config.BackupUserConfig()
		if err != nil {
			return fmt.Errorf("failed to back up config: %w", err)
		}

		if err := config.NewConfig().WriteYAML(configPath); err != nil {
			return fmt.Errorf("failed to write configuration: %w", err)
		}

		w.Success("Configuration reset to defaults")
		w.Statusf("📁", "Location: %s", configPath)
		w.Statusf("💾", "Backup: %s", backupPath)
		return nil
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	if err := config.NewConfig().WriteYAML(configPath); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	w.Success("Created user configuration")
	w.Statusf("📁", "Location: %s", configPath)
	w.Newline()
	w.Status("📋", "Next steps:")
	w.Status("", "  1. Edit the file to customize server, scoring, schema or audit settings")
	w.Status("", "  2. Run 'percolated config show' to verify")

	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	w := output.NewAuto(cmd.OutOrStdout())

	var cfg *config.Config
	var sourceDesc string

	switch source {
	case "merged":
		loaded, err := config.Load(projectDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		sourceDesc = "merged (defaults + user + project + env)"

	case "user":
		if !config.UserConfigExists() {
			w.Warning("No user configuration file found")
			w.Statusf("📁", "Expected at: %s", config.GetUserConfigPath())
			w.Status("💡", "Run 'percolated config init' to create one")
			return nil
		}
		userCfg, err := config.LoadUserConfig()
		if err != nil {
			return fmt.Errorf("failed to load user config: %w", err)
		}
		cfg = userCfg
		sourceDesc = fmt.Sprintf("user (%s)", config.GetUserConfigPath())

	case "project":
		path, ok := config.ProjectConfigPath(projectDir)
		if !ok {
			w.Warning("No project configuration file found")
			w.Statusf("📁", "Expected in: %s", projectDir)
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read project config: %w", err)
		}
		cfg = config.NewConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse project config: %w", err)
		}
		sourceDesc = fmt.Sprintf("project (%s)", path)

	case "defaults":
		cfg = config.NewConfig()
		sourceDesc = "defaults (hardcoded)"

	default:
		return fmt.Errorf("invalid source: %s (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w.Statusf("📋", "Configuration source: %s", sourceDesc)
	w.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return nil
}
