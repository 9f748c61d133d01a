package engine

import (
	"fmt"
	"log/slog"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/match/rules"
	"lendstack-hq/atlas/pkg/policy"
)

// Config contains configuration for the matching engine.
type Config struct {
	// DefaultWeight is the scoring weight for criteria a policy does not
	// weight explicitly. Default: 10.
	DefaultWeight int

	// MaxConcurrency caps the number of lenders evaluated at once.
	// Zero means one goroutine per lender.
	MaxConcurrency int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultWeight: 10,
	}
}

// Engine evaluates applications against lender policies. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	config   *Config
	registry *rules.Registry
	metrics  *Metrics
	logger   *slog.Logger
}

// New creates an engine with the given rule registry. A nil config uses
// defaults; metrics may be nil to disable instrumentation.
func New(config *Config, registry *rules.Registry, metrics *Metrics) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("rule registry is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.DefaultWeight <= 0 {
		config.DefaultWeight = 10
	}
	return &Engine{
		config:   config,
		registry: registry,
		metrics:  metrics,
		logger:   slog.Default().With("component", "match.engine"),
	}, nil
}

// EvaluateLender evaluates one application against one lender policy.
//
// Lender-wide restrictions run first; a failed restriction rejects the
// lender without evaluating any program, leaving Programs empty. The
// returned error indicates a configuration problem (unknown criterion,
// mistyped config), never an application that merely failed.
func (e *Engine) EvaluateLender(appCtx *match.Context, pol *policy.LenderPolicy) (match.LenderMatch, error) {
	m := match.LenderMatch{
		LenderID:      pol.ID,
		LenderName:    pol.Name,
		PolicyVersion: pol.Version,
	}

	if reasons, err := e.checkRestrictions(appCtx, pol); err != nil {
		return m, err
	} else if len(reasons) > 0 {
		m.RejectionReasons = reasons
		return m, nil
	}

	var best *match.ProgramEvaluation
	for i := range pol.Programs {
		eval, err := e.evaluateProgram(appCtx, pol, &pol.Programs[i])
		if err != nil {
			return m, err
		}
		m.Programs = append(m.Programs, eval)

		// Strictly greater: ties keep the program configured first.
		if eval.Eligible && (best == nil || eval.FitScore > best.FitScore) {
			best = &m.Programs[len(m.Programs)-1]
		}
	}

	if best != nil {
		m.Eligible = true
		m.FitScore = best.FitScore
		m.BestProgramID = best.ProgramID
		return m, nil
	}

	m.RejectionReasons = unionReasons(m.Programs)
	return m, nil
}

// checkRestrictions runs every lender-wide hard gate and collects the
// failed restrictions' messages.
func (e *Engine) checkRestrictions(appCtx *match.Context, pol *policy.LenderPolicy) ([]string, error) {
	r := pol.Restrictions
	if r == nil {
		return nil, nil
	}

	var configs []policy.CriterionConfig
	if r.Geographic != nil {
		configs = append(configs, r.Geographic)
	}
	if r.Industry != nil {
		configs = append(configs, r.Industry)
	}
	if r.Transaction != nil {
		configs = append(configs, r.Transaction)
	}
	if r.Equipment != nil {
		configs = append(configs, r.Equipment)
	}

	var failures []string
	for _, cfg := range configs {
		rule, err := e.registry.Lookup(cfg.CriterionType())
		if err != nil {
			return nil, &ConfigurationError{
				LenderID: pol.ID,
				Message:  "restriction has no registered rule",
				Cause:    err,
			}
		}
		res, err := rule.Evaluate(appCtx, cfg)
		if err != nil {
			return nil, &ConfigurationError{
				LenderID: pol.ID,
				Message:  "restriction evaluation failed",
				Cause:    err,
			}
		}
		e.metrics.RecordRuleOutcome(string(res.RuleName), res.Passed)
		if !res.Passed {
			failures = append(failures, res.Message)
		}
	}
	return failures, nil
}

// unionReasons collects the deduplicated union of all programs' rejection
// reasons, preserving first-appearance order.
func unionReasons(programs []match.ProgramEvaluation) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range programs {
		for _, reason := range p.RejectionReasons {
			if !seen[reason] {
				seen[reason] = true
				out = append(out, reason)
			}
		}
	}
	return out
}
