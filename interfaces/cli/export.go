package cli

import (
	"github.com/spf13/cobra"

	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/di"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/export"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the contact graph to another system",
	}
	cmd.AddCommand(newExportNeo4jCommand(opts))
	return cmd
}

func newExportNeo4jCommand(opts *rootOptions) *cobra.Command {
	var uri, user, password string

	cmd := &cobra.Command{
		Use:   "neo4j",
		Short: "Upsert every contact and relationship into Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("uri") {
				cfg.Neo4jURI = uri
			}
			if cmd.Flags().Changed("user") {
				cfg.Neo4jUser = user
			}
			if cmd.Flags().Changed("password") {
				cfg.Neo4jPassword = password
			}

			container, cleanup, err := di.InitializeContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			runner, err := export.NewDriverRunner(cmd.Context(), cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
			if err != nil {
				return err
			}
			defer runner.Close(cmd.Context())

			exporter := export.NewNeo4jExporter(runner, container.Contacts, container.Relationships, container.Logger)
			stats, err := exporter.Export(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return writeJSON(out, stats, isTerminal(out))
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", "bolt or neo4j URI (default from NEO4J_URI)")
	cmd.Flags().StringVar(&user, "user", "", "Neo4j user (default from NEO4J_USER)")
	cmd.Flags().StringVar(&password, "password", "", "Neo4j password (default from NEO4J_PASSWORD)")
	return cmd
}
