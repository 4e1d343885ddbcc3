package main

import (
	"github.com/spf13/cobra"

	"github.com/newsletter-dev/newsletter/shared/config"
	"github.com/newsletter-dev/newsletter/shared/logger"
)

type runtimeState struct {
	configFolder string
	cfg          *config.Config
}

func newRootCommand() *cobra.Command {
	rt := &runtimeState{}

	root := &cobra.Command{
		Use:           "newsletter-api",
		Short:         "Newsletter subscription and delivery service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rt.configFolder, "config_folder", "backend/config", "path to folder with configs")

	root.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newHashPasswordCommand(),
		newCreateUserCommand(rt),
	)
	return root
}

// loadConfig is used by subcommands that talk to the database.
func (rt *runtimeState) loadConfig() error {
	cfg, err := config.Load(rt.configFolder)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)
	rt.cfg = cfg
	return nil
}
