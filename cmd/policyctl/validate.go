package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/rental-portal/internal/policy"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a route policy file",
		Long: `Parse and build a route policy file without starting the gateway.

Fails when the file has unknown fields or roles, duplicate routes, or
redirect destinations that would loop (a login route that is not public,
a role dashboard its role cannot open).

Examples:
  policyctl validate --file deploy/policy.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadPolicy(cmd)
			if err != nil {
				return fmt.Errorf("invalid policy: %w", err)
			}

			entries := engine.Table().Entries()
			public := 0
			for _, e := range entries {
				if e.Public {
					public++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "policy OK: %d routes (%d public)\n", len(entries), public)
			for _, e := range entries {
				fmt.Fprintf(out, "  %-8s %-32s %s\n", e.Match, e.Pattern, describeAccess(e))
			}
			return nil
		},
	}
}

func describeAccess(e policy.RoutePolicy) string {
	switch {
	case e.Public:
		return "public"
	case len(e.Roles) == 0:
		return "any authenticated role"
	default:
		return fmt.Sprintf("roles %v", e.Roles)
	}
}
