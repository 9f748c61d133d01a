package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lendstack-hq/atlas/pkg/config"
	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/match/engine"
	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
	"lendstack-hq/atlas/pkg/results"
	"lendstack-hq/atlas/pkg/results/storage"
)

var matchFlags struct {
	application string
	format      string
	record      bool
	all         bool
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match an application against the lender policy set",
	Long: `Evaluate a loan application (YAML file) against every lender policy
and print the ranked matches.

The application file carries the evaluation snapshot: bureau scores,
business attributes, guarantor flags, credit history, the loan request, and
equipment details. Amounts are in minor currency units (cents).

Examples:
  # Match an application, text output
  atlas match --application app.yaml

  # Full JSON output including ineligible lenders
  atlas match --application app.yaml --format json --all

  # Persist the result to the configured results backend
  atlas match --application app.yaml --record`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchFlags.application, "application", "a", "", "application YAML file (required)")
	matchCmd.Flags().StringVarP(&matchFlags.format, "format", "f", "text", "output format: text, json")
	matchCmd.Flags().BoolVar(&matchFlags.record, "record", false, "persist the result to the results backend")
	matchCmd.Flags().BoolVar(&matchFlags.all, "all", false, "include ineligible lenders in text output")
	matchCmd.MarkFlagRequired("application")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	appCtx, err := loadApplication(matchFlags.application)
	if err != nil {
		return err
	}

	registry := rules.NewRegistry()
	loader := policy.NewLoader(&policy.LoaderConfig{
		MaxFileSize: cfg.Policy.MaxFileSize,
		TypeChecker: registry,
	})

	store := policy.NewStore()
	policies, loadErrs, err := loader.LoadDirectory(policiesDir, cfg.Policy.SkipInvalid)
	if err != nil {
		return fmt.Errorf("failed to load policy directory: %w", err)
	}
	if len(loadErrs) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d policy files failed to load\n", len(loadErrs))
	}
	if err := store.Replace(policies); err != nil {
		return fmt.Errorf("failed to activate policy set: %w", err)
	}

	eng, err := engine.New(&engine.Config{
		DefaultWeight:  cfg.Engine.DefaultWeight,
		MaxConcurrency: cfg.Engine.MaxConcurrency,
	}, registry, engine.NewMetrics(nil))
	if err != nil {
		return err
	}

	result, err := eng.EvaluateStore(context.Background(), appCtx, store)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if matchFlags.record {
		if err := recordResult(cfg, result); err != nil {
			return err
		}
	}

	switch matchFlags.format {
	case "json":
		return printJSON(result)
	default:
		printText(result)
		return nil
	}
}

// loadCLIConfig loads the config file when given, or defaults.
func loadCLIConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadApplication reads an application snapshot from a YAML file.
func loadApplication(path string) (*match.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application file %q: %w", path, err)
	}
	var appCtx match.Context
	if err := yaml.Unmarshal(data, &appCtx); err != nil {
		return nil, fmt.Errorf("failed to parse application file %q: %w", path, err)
	}
	if appCtx.ApplicationID == "" {
		return nil, fmt.Errorf("application file %q: application_id is required", path)
	}
	return &appCtx, nil
}

// recordResult persists the result synchronously through the configured
// backend.
func recordResult(cfg *config.Config, result *match.Result) error {
	var (
		backend results.Storage
		err     error
	)
	switch cfg.Results.Backend {
	case "memory":
		backend = storage.NewMemoryStorage()
	default:
		backend, err = storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Results.SQLitePath,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  cfg.Results.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open results storage: %w", err)
		}
	}
	defer backend.Close()

	recorder := results.NewRecorder(backend, &results.RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  cfg.Results.AsyncBuffer,
		WriteTimeout: cfg.Results.WriteTimeout,
	})
	recorder.Record(result)
	return recorder.Close()
}

func printJSON(result *match.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printText(result *match.Result) {
	fmt.Printf("Application %s: %d of %d lenders eligible (%.1fms)\n\n",
		result.ApplicationID, result.TotalEligible, result.TotalEvaluated,
		float64(result.Duration.Microseconds())/1000)

	for i := range result.Matches {
		m := &result.Matches[i]
		switch {
		case m.Eligible:
			fmt.Printf("#%d  %s (%s)  fit %.1f  program %s\n",
				*m.Rank, m.LenderName, m.LenderID, m.FitScore, m.BestProgramID)
		case matchFlags.all && m.Error != "":
			fmt.Printf("--  %s (%s)  error: %s\n", m.LenderName, m.LenderID, m.Error)
		case matchFlags.all:
			fmt.Printf("--  %s (%s)  ineligible\n", m.LenderName, m.LenderID)
			for _, reason := range m.RejectionReasons {
				fmt.Printf("      - %s\n", reason)
			}
		}
	}

	if result.BestMatch == nil {
		fmt.Println("No eligible lenders.")
	}
}
