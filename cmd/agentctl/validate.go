package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/botanarede/beddel-alpha/manifest"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Parse a workflow manifest and report any errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ok: %d step(s)\n", len(m.Workflow))
			return nil
		},
	}
	return cmd
}
