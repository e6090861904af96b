// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"simbench-cli/internal/checksum"
	"simbench-cli/internal/config"
	"simbench-cli/internal/issue"

	"github.com/spf13/cobra"
)

var configCmd = newConfigCommand()

// newConfigCommand creates the `simbench config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage simbench configuration",
		Long: `Manage simbench configuration.

Configuration is stored in:
  - Linux: ~/.config/simbench/config.cue
  - macOS: ~/Library/Application Support/simbench/config.cue
  - Windows: %APPDATA%\simbench\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			cueContent := config.GenerateCUE(cfg)
			fmt.Print(cueContent)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := MetricStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	// Derive config file path from the standard config directory since the provider
	// does not cache resolved paths; each call derives from the standard config directory.
	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := cfgDir + "/config.cue"
		if fileExistsCheck(cfgPath) {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	// Show values
	fmt.Printf("%s: %s\n", keyStyle.Render("destination_root"), valueStyle.Render(string(cfg.DestinationRoot)))
	fmt.Printf("%s: %s\n", keyStyle.Render("manifest"), valueStyle.Render(string(cfg.Manifest)))
	if cfg.ToleranceRules != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("tolerance_rules"), valueStyle.Render(string(cfg.ToleranceRules)))
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("tolerance_rules"), SubtitleStyle.Render("(exact comparison)"))
	}
	fmt.Printf("%s: %s\n", keyStyle.Render("parallelism"), valueStyle.Render(strconv.Itoa(cfg.Parallelism)))
	fmt.Printf("%s: %s\n", keyStyle.Render("checksum_algorithm"), valueStyle.Render(string(cfg.ChecksumAlgorithm)))
	fmt.Printf("%s: %s\n", keyStyle.Render("download_timeout"), valueStyle.Render(cfg.DownloadTimeout))

	historyPath, histErr := config.HistoryPath(cfg)
	if histErr == nil {
		fmt.Printf("%s: %s\n", keyStyle.Render("history"), valueStyle.Render(historyPath))
	}

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Printf("%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s/config.cue\n", cfgDir)

	historyPath, err := config.HistoryPath(nil)
	if err == nil {
		fmt.Printf("History database: %s\n", historyPath)
	}

	return nil
}

func setConfigValue(ctx context.Context, key, value string) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	switch key {
	case "destination_root":
		cfg.DestinationRoot = config.FilePath(value)

	case "manifest":
		cfg.Manifest = config.FilePath(value)

	case "tolerance_rules":
		cfg.ToleranceRules = config.FilePath(value)

	case "parallelism":
		n, parseErr := strconv.Atoi(value)
		if parseErr != nil || n < 0 {
			return fmt.Errorf("invalid parallelism: must be a non-negative integer")
		}
		cfg.Parallelism = n

	case "checksum_algorithm":
		alg := checksum.Algorithm(value)
		if valid, errs := alg.IsValid(); !valid {
			return errs[0]
		}
		cfg.ChecksumAlgorithm = alg

	case "download_timeout":
		cfg.DownloadTimeout = value

	case "history":
		cfg.History = config.FilePath(value)

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "ui.color_scheme":
		scheme := config.ColorScheme(value)
		if valid, errs := scheme.IsValid(); !valid {
			return errs[0]
		}
		cfg.UI.ColorScheme = scheme

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: destination_root, manifest, tolerance_rules, parallelism, checksum_algorithm, download_timeout, history, ui.verbose, ui.color_scheme", key)
	}

	// Reject combinations the individual switches cannot see (e.g. an
	// unparsable duration).
	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
