package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
)

var validateFlags struct {
	strict bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate lender policy files",
	Long: `Load and validate every lender policy in the policy directory.

Each file is checked for YAML syntax, schema correctness, criterion types
the engine knows how to evaluate, and internal consistency (amount bounds,
term matrix ranges, state codes, scoring weights).

Examples:
  # Validate the default policy directory
  atlas validate

  # Validate a specific directory, failing on the first bad file
  atlas validate --policies ./policies --strict`,
	RunE: validatePolicies,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.strict, "strict", false, "fail on the first invalid file")
}

func validatePolicies(cmd *cobra.Command, args []string) error {
	registry := rules.NewRegistry()
	loader := policy.NewLoader(&policy.LoaderConfig{TypeChecker: registry})

	policies, loadErrs, err := loader.LoadDirectory(policiesDir, !validateFlags.strict)
	if err != nil {
		return fmt.Errorf("failed to load policy directory: %w", err)
	}

	for _, p := range policies {
		fmt.Printf("ok    %s (%s, version %d, %d programs)\n",
			p.ID, p.Name, p.Version, len(p.Programs))
	}

	for _, loadErr := range loadErrs {
		var le *policy.LoadError
		if errors.As(loadErr, &le) {
			fmt.Printf("FAIL  %s: %v\n", le.FilePath, loadErr)
		} else {
			fmt.Printf("FAIL  %v\n", loadErr)
		}
	}

	fmt.Printf("\n%d valid, %d invalid\n", len(policies), len(loadErrs))
	if len(loadErrs) > 0 {
		return fmt.Errorf("%d policy files failed validation", len(loadErrs))
	}
	return nil
}
