package main

import (
	"github.com/spf13/cobra"

	"github.com/botanarede/beddel-alpha/providers/anthropic"
	"github.com/botanarede/beddel-alpha/providers/openai"
	"github.com/botanarede/beddel-alpha/registry"

	_ "github.com/botanarede/beddel-alpha/primitives"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentctl",
		Short:         "Load and execute a declarative workflow manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("verbose", false, "Log each step's start/complete/error events to stderr")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

// registerProviders wires any provider credentials found in the environment
// under the conventional registry names a manifest's "provider" config key
// would reference.
func registerProviders() []string {
	var registered []string
	if key := anthropicAPIKey(); key != "" {
		model := anthropicDefaultModel()
		if client, err := anthropic.NewFromAPIKey(key, model); err == nil {
			registry.RegisterProvider("anthropic", client)
			registered = append(registered, "anthropic")
		}
	}
	if key := openaiAPIKey(); key != "" {
		model := openaiDefaultModel()
		if client, err := openai.NewFromAPIKey(key, model); err == nil {
			registry.RegisterProvider("openai", client)
			registered = append(registered, "openai")
		}
	}
	return registered
}
