package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/di"
)

func newGraphCommand(opts *rootOptions) *cobra.Command {
	var (
		depth int
		types string
	)

	cmd := &cobra.Command{
		Use:   "graph <contactID>",
		Short: "Print the local graph around a contact as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			container, cleanup, err := di.InitializeContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := container.QueryBus.Ask(cmd.Context(), queries.GetLocalGraphQuery{
				ContactID: strings.TrimSpace(args[0]),
				Depth:     depth,
				Types:     services.ParseTypeSet(types).Values(),
			})
			if err != nil {
				return err
			}
			graph, ok := result.(*services.LocalGraph)
			if !ok {
				return fmt.Errorf("unexpected result type %T", result)
			}

			out := cmd.OutOrStdout()
			return writeJSON(out, graph, isTerminal(out))
		},
	}
	cmd.Flags().IntVar(&depth, "depth", services.MinDepth, "hops to expand (1-3)")
	cmd.Flags().StringVar(&types, "types", "", "comma-separated relationship types to follow")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
