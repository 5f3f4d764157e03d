package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trellisdb/trellis/config"
	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/sym"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: sym.Config + " Manage Trellis configuration",
	Long: sym.Config + ` config — Manage Trellis configuration

Configuration sources (in order of precedence):
1. Environment variables (TRELLIS_* prefix)
2. Project config (./trellis.toml, searched upward)
3. User config (~/.trellis/trellis.toml)
4. Default values

Examples:
  trellis config show                 # Show current configuration
  trellis config show --format json   # Show configuration in JSON format
  trellis config get database.path    # Get a specific value
  trellis config path                 # Show the user config file path
  trellis config watch                # Reload and report on config changes`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, import.max_depth)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the user configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.DefaultPath())
	},
}

var configWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the user config file and reload on change",
	Long: `Watch the user configuration file and reload it whenever it changes.

Runs until interrupted. Edits made by 'trellis' itself (config saves)
are recognized and do not trigger a reload.`,
	RunE: runConfigWatch,
}

var configFormatFlag string

func init() {
	configShowCmd.Flags().StringVar(&configFormatFlag, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configPathCmd)
	ConfigCmd.AddCommand(configWatchCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch configFormatFlag {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# Trellis configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# Trellis configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormatFlag)
	}

	return nil
}

func runConfigWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The watcher needs an existing file; write the effective config if the
	// user has none yet
	path := config.DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(cfg); err != nil {
			return errors.Wrapf(err, "failed to create %s", path)
		}
		pterm.Info.Printf("Created %s\n", path)
	}

	watcher, err := config.NewConfigWatcher(path)
	if err != nil {
		return errors.Wrap(err, "failed to watch config")
	}
	defer watcher.Stop()

	// Register globally so config saves from this process are not re-read
	config.SetGlobalWatcher(watcher)
	defer config.SetGlobalWatcher(nil)

	watcher.OnReload(func(newCfg *config.Config) error {
		pterm.Success.Printf("Config reloaded: database.path=%s import.max_depth=%d\n",
			newCfg.Database.Path, newCfg.Import.MaxDepth)
		return nil
	})
	watcher.Start()

	pterm.Info.Printf("Watching %s (Ctrl+C to stop)\n", path)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	pterm.Println()
	pterm.Info.Println("Stopping config watcher")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if _, err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	v := config.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Println(v.Get(key))
	return nil
}
