// Package cli implements the contactsctl command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
)

type rootOptions struct {
	configFile  string
	storeDriver string
}

// NewRootCommand builds contactsctl with all subcommands
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "contactsctl",
		Short:         "Manage the contact-bubbles store and API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")
	root.PersistentFlags().StringVar(&opts.storeDriver, "store", "", "store driver: sqlite, dynamodb or memory")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newGraphCommand(opts),
		newExportCommand(opts),
		newTokenCommand(opts),
	)
	return root
}

// Execute runs the root command until completion or an interrupt
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

// load applies the flag overrides on top of the environment
func (o *rootOptions) load() (*config.Config, error) {
	if o.configFile != "" {
		if err := os.Setenv("CONFIG_FILE", o.configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if o.storeDriver != "" {
		cfg.StoreDriver = o.storeDriver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
