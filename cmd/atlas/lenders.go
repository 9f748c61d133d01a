package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
)

var lendersCmd = &cobra.Command{
	Use:   "lenders",
	Short: "List loaded lenders and their programs",
	Long: `Load the policy directory and print each lender with its programs,
amount ranges, and configured restrictions.

Examples:
  # List lenders from the default policy directory
  atlas lenders

  # List lenders from a specific directory
  atlas lenders --policies ./policies`,
	RunE: listLenders,
}

func init() {
	rootCmd.AddCommand(lendersCmd)
}

func listLenders(cmd *cobra.Command, args []string) error {
	registry := rules.NewRegistry()
	loader := policy.NewLoader(&policy.LoaderConfig{TypeChecker: registry})

	policies, loadErrs, err := loader.LoadDirectory(policiesDir, true)
	if err != nil {
		return fmt.Errorf("failed to load policy directory: %w", err)
	}

	for _, p := range policies {
		fmt.Printf("%s  %s (version %d)\n", p.ID, p.Name, p.Version)
		if p.ContactEmail != "" {
			fmt.Printf("    contact: %s\n", p.ContactEmail)
		}
		if p.Restrictions != nil {
			fmt.Printf("    restrictions: %s\n", describeRestrictions(p.Restrictions))
		}
		for _, prog := range p.Programs {
			fmt.Printf("    %s  %s%s\n", prog.ID, prog.Name, describeAmounts(&prog))
		}
		fmt.Println()
	}

	if len(loadErrs) > 0 {
		fmt.Printf("warning: %d policy files failed to load\n", len(loadErrs))
	}
	fmt.Printf("%d lenders loaded\n", len(policies))
	return nil
}

func describeAmounts(prog *policy.Program) string {
	switch {
	case prog.MinAmount != nil && prog.MaxAmount != nil:
		return fmt.Sprintf("  (%d - %d)", *prog.MinAmount, *prog.MaxAmount)
	case prog.MinAmount != nil:
		return fmt.Sprintf("  (%d+)", *prog.MinAmount)
	case prog.MaxAmount != nil:
		return fmt.Sprintf("  (up to %d)", *prog.MaxAmount)
	default:
		return ""
	}
}

func describeRestrictions(r *policy.Restrictions) string {
	var parts []string
	if r.Geographic != nil {
		parts = append(parts, "geographic")
	}
	if r.Industry != nil {
		parts = append(parts, "industry")
	}
	if r.Transaction != nil {
		parts = append(parts, "transaction")
	}
	if r.Equipment != nil {
		parts = append(parts, "equipment")
	}
	if len(parts) == 0 {
		return "none"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
