package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nfrund/headstart/cmd/headstart-cli/internal/output"
	"github.com/nfrund/headstart/internal/hooks"
)

func newHooksCmd(opts *rootOptions) *cobra.Command {
	hooksCmd := &cobra.Command{
		Use:   "hooks",
		Short: "Explore the hook topics of a running server",
	}

	var prefix, format string
	list := &cobra.Command{
		Use:   "list",
		Short: "List hook topics",
		Long: `List the topics that currently have handlers, in registration order.

Examples:
  headstart-cli hooks list
  headstart-cli hooks list --prefix view.blogging
  headstart-cli hooks list --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.CheckFormat(format); err != nil {
				return err
			}
			topics, err := opts.client().Hooks(cmd.Context())
			if err != nil {
				return fmt.Errorf("list hooks: %w", err)
			}
			return output.Topics(cmd.OutOrStdout(), format, filterTopics(topics, prefix))
		},
	}
	list.Flags().StringVarP(&prefix, "prefix", "p", "", "Only show topics starting with this prefix")
	list.Flags().StringVarP(&format, "format", "f", output.FormatTable, "Output format (table, json)")

	hooksCmd.AddCommand(list)
	return hooksCmd
}

func filterTopics(topics []hooks.TopicInfo, prefix string) []hooks.TopicInfo {
	if prefix == "" {
		return topics
	}
	var out []hooks.TopicInfo
	for _, t := range topics {
		if strings.HasPrefix(t.Topic, prefix) {
			out = append(out, t)
		}
	}
	return out
}
