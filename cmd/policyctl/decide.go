package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/rental-portal/internal/auth"
)

type decision struct {
	Path           string `json:"path"`
	Render         bool   `json:"render"`
	Verdict        string `json:"verdict"`
	Reason         string `json:"reason"`
	RedirectTarget string `json:"redirect_target,omitempty"`
	UnknownRoute   bool   `json:"unknown_route"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
}

func newDecideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Explain the guard decision for a path and session",
		Long: `Evaluate one navigation against the route policy, as the gateway would.

Examples:
  # Anonymous visitor
  policyctl decide --path /admin-dashboard --anonymous

  # Landlord opening a tenant page
  policyctl decide --path /tenant-dashboard --role landlord

  # Page that additionally requires the landlord role
  policyctl decide --path /messages --role tenant --required-role landlord --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			roleName, _ := cmd.Flags().GetString("role")
			anonymous, _ := cmd.Flags().GetBool("anonymous")
			requiredName, _ := cmd.Flags().GetString("required-role")
			format, _ := cmd.Flags().GetString("format")

			engine, err := loadPolicy(cmd)
			if err != nil {
				return fmt.Errorf("invalid policy: %w", err)
			}

			session := auth.Anonymous()
			if !anonymous {
				if roleName == "" {
					return fmt.Errorf("either --role or --anonymous is required")
				}
				// Unrecognized roles are kept so malformed sessions can be explained
				role, ok := auth.ParseRole(roleName)
				if !ok {
					role = auth.Role(roleName)
				}
				session = auth.NewSession("policyctl", role)
			}

			required := auth.RoleNone
			if requiredName != "" {
				r, ok := auth.ParseRole(requiredName)
				if !ok {
					return fmt.Errorf("unknown required role %q", requiredName)
				}
				required = r
			}

			v := engine.Decide(path, session)
			v = engine.Require(v, path, session, required)

			d := decision{
				Path:         path,
				Render:       v.Allowed(),
				Verdict:      string(v.Kind),
				Reason:       string(v.Reason),
				UnknownRoute: v.UnknownRoute,
			}
			if !d.Render {
				d.RedirectTarget = engine.Target(v)
			}
			if res := engine.Resolve(path); !res.Fallback {
				d.MatchedPattern = res.Policy.Pattern
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			case "text", "":
				fmt.Fprintf(out, "path:     %s\n", d.Path)
				if d.MatchedPattern != "" {
					fmt.Fprintf(out, "matched:  %s\n", d.MatchedPattern)
				} else {
					fmt.Fprintln(out, "matched:  (none, fail-safe default)")
				}
				fmt.Fprintf(out, "verdict:  %s\n", d.Verdict)
				fmt.Fprintf(out, "reason:   %s\n", d.Reason)
				if d.RedirectTarget != "" {
					fmt.Fprintf(out, "redirect: %s\n", d.RedirectTarget)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}

	cmd.Flags().String("path", "", "navigation path to evaluate")
	cmd.Flags().String("role", "", "session role (tenant, landlord, admin)")
	cmd.Flags().Bool("anonymous", false, "evaluate as an anonymous visitor")
	cmd.Flags().String("required-role", "", "per-page required role")
	cmd.Flags().String("format", "text", "output format: text or json")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
