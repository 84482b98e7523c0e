package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/headstart/cmd/headstart-cli/internal/output"
	"github.com/nfrund/headstart/internal/models"
)

func newModelsCmd(opts *rootOptions) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Explore the transformers of a running server",
	}

	var typ, format string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transformer keys",
		Long: `List the registered (type, variant) transformers sorted by type.

Examples:
  headstart-cli models list
  headstart-cli models list --type xinmods:blog --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.CheckFormat(format); err != nil {
				return err
			}
			keys, err := opts.client().Models(cmd.Context())
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}
			return output.Keys(cmd.OutOrStdout(), format, filterKeys(keys, typ))
		},
	}
	list.Flags().StringVarP(&typ, "type", "t", "", "Only show transformers of this type")
	list.Flags().StringVarP(&format, "format", "f", output.FormatTable, "Output format (table, json)")

	modelsCmd.AddCommand(list)
	return modelsCmd
}

func filterKeys(keys []models.KeyInfo, typ string) []models.KeyInfo {
	if typ == "" {
		return keys
	}
	var out []models.KeyInfo
	for _, k := range keys {
		if k.Type == typ {
			out = append(out, k)
		}
	}
	return out
}
