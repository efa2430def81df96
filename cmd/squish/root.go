package main

import (
	"os"

	"github.com/spf13/cobra"

	"squish/config"
)

// commandContext carries lazily loaded configuration shared by all
// subcommands.
type commandContext struct {
	configFlag *string
	tokenFlag  *string

	cfg     *config.Config
	cfgPath string
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = path
	return cfg, nil
}

func (c *commandContext) client() (*apiClient, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	token := *c.tokenFlag
	if token == "" {
		token = os.Getenv("SQUISH_TOKEN")
	}
	return newAPIClient("http://"+cfg.Bind, token), nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var tokenFlag string

	ctx := &commandContext{configFlag: &configFlag, tokenFlag: &tokenFlag}

	rootCmd := &cobra.Command{
		Use:           "squish",
		Short:         "Size-targeted video re-encode queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "API bearer token (defaults to SQUISH_TOKEN)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newStartCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHashTokenCommand())

	return rootCmd
}
