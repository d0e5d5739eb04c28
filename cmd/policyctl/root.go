package main

import (
	"github.com/spf13/cobra"
	"github.com/upb/rental-portal/internal/policy"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "policyctl",
		Short:         "Inspect and operate the rental portal route policy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("file", "f", "", "route policy file (default: built-in portal policy)")

	root.AddCommand(newValidateCmd(), newDecideCmd(), newInvalidateCmd())
	return root
}

// loadPolicy builds the engine for --file, or the built-in policy when unset.
func loadPolicy(cmd *cobra.Command) (*policy.Engine, error) {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return policy.Default()
	}

	cfg, err := policy.LoadFile(file)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}
