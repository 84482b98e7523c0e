package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/headstart/cmd/headstart-cli/internal/scaffold"
)

func newExtensionCmd() *cobra.Command {
	var name, root string

	cmd := &cobra.Command{
		Use:   "new-extension",
		Short: "Scaffold a new extension",
		Long: `Creates an extension with a landing page hook, a card transformer, a page
template and a test, and adds it to internal/app/modules.go.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("extension name is required: --name=<extension-name>")
			}
			res, err := scaffold.NewExtension(afero.NewOsFs(), root, name)
			out := cmd.OutOrStdout()
			if res != nil {
				for _, f := range res.Created {
					fmt.Fprintf(out, "created %s\n", f)
				}
			}
			if err != nil {
				if res != nil && len(res.Created) > 0 && !res.Registered {
					fmt.Fprintf(out, "\nAdd the extension to %s manually:\n\n", scaffold.ModulesFile)
					fmt.Fprintf(out, "\t%[1]s.New(%[1]s.Dependencies{Store: deps.Store, Models: deps.Models}),\n\n", name)
				}
				return err
			}
			fmt.Fprintf(out, "registered %s in %s\n", name, scaffold.ModulesFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "The name of the new extension (e.g., 'inventory')")
	cmd.Flags().StringVar(&root, "root", ".", "Module root directory")
	return cmd
}
