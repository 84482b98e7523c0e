package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/headstart/cmd/headstart-cli/internal/client"
)

const defaultURL = "http://localhost:8080"

type rootOptions struct {
	url   string
	token string
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.url, o.token)
}

// NewRootCmd builds the headstart-cli command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "headstart-cli",
		Short: "Headstart CLI tool",
		Long: `headstart-cli inspects and controls a running headstart server and
scaffolds new extensions.

Registry commands read the server's admin endpoints. Set --token (or
ADMIN_TOKEN) when the server is protected.

Use "headstart-cli [command] --help" for more information about a command.`,
		SilenceUsage: true,
	}

	url := os.Getenv("HEADSTART_URL")
	if url == "" {
		url = defaultURL
	}
	root.PersistentFlags().StringVar(&opts.url, "url", url, "Base URL of the headstart server")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("ADMIN_TOKEN"), "Admin token")

	root.AddCommand(
		newHooksCmd(opts),
		newModelsCmd(opts),
		newReloadCmd(opts),
		newExtensionCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute executes the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
