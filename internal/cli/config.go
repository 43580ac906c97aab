package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/git-force-prefix/internal/config"
	"github.com/kilupskalvis/git-force-prefix/internal/gitrepo"
)

func newConfigCmd(opts *options) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after reading config files and GFP_* environment
variables, as TOML.

With --write, save it to the user config file so it becomes the default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Outside a repository only the user config applies.
			gitDir := ""
			if repo, err := gitrepo.Open(opts.repoPath); err == nil {
				gitDir = repo.GitDir()
			}
			cfg, err := config.Load(opts.configPath, gitDir)
			if err != nil {
				return err
			}
			applyFlags(cmd, opts, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if !write {
				data, err := toml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				if cfg.Path() != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "# from %s\n", cfg.Path())
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			dir, err := os.UserConfigDir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.UserConfigDir, config.UserConfigFile)
			if err := cfg.Save(path); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Save the effective configuration to the user config file")
	return cmd
}
