package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/policy"
)

// Evaluate matches an application against a full policy set and returns
// ranked results.
//
// Lenders are evaluated concurrently; each goroutine writes only its own
// slot, so no shared accumulator exists to contend on. A panic inside one
// lender's evaluation is recovered at the goroutine boundary and reported
// as that lender's error without affecting the others. Eligible matches
// are ranked contiguously from 1, ineligible and errored lenders follow in
// policy order with no rank.
func (e *Engine) Evaluate(ctx context.Context, appCtx *match.Context, policies []*policy.LenderPolicy) (*match.Result, error) {
	if appCtx == nil {
		return nil, fmt.Errorf("application context is required")
	}

	start := time.Now()
	evaluated := make([]match.LenderMatch, len(policies))

	sem := make(chan struct{}, concurrency(e.config.MaxConcurrency, len(policies)))
	var wg sync.WaitGroup
	for i := range policies {
		wg.Add(1)
		go func(idx int, pol *policy.LenderPolicy) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("lender evaluation panicked",
						"lender_id", pol.ID,
						"panic", r,
						"stack", string(debug.Stack()),
					)
					e.metrics.RecordEvaluationError(pol.ID, "panic")
					evaluated[idx] = match.LenderMatch{
						LenderID:      pol.ID,
						LenderName:    pol.Name,
						PolicyVersion: pol.Version,
						Error:         fmt.Sprintf("evaluation panicked: %v", r),
					}
				}
			}()

			m, err := e.EvaluateLender(appCtx, pol)
			if err != nil {
				e.logger.Error("lender evaluation failed",
					"lender_id", pol.ID,
					"error", err,
				)
				e.metrics.RecordEvaluationError(pol.ID, "config")
				m.Eligible = false
				m.FitScore = 0
				m.Error = err.Error()
			}
			evaluated[idx] = m
		}(i, policies[i])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := rank(evaluated)
	result.ApplicationID = appCtx.ApplicationID
	result.Duration = time.Since(start)
	result.EvaluatedAt = time.Now()

	for i := range result.Matches {
		outcome := "ineligible"
		switch {
		case result.Matches[i].Error != "":
			outcome = "error"
		case result.Matches[i].Eligible:
			outcome = "eligible"
		}
		e.metrics.RecordLenderOutcome(result.Matches[i].LenderID, outcome)
	}
	e.metrics.RecordEvaluation(result.TotalEligible, result.Duration)

	e.logger.Info("application evaluated",
		"application_id", appCtx.ApplicationID,
		"lenders", result.TotalEvaluated,
		"eligible", result.TotalEligible,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// EvaluateStore matches an application against the store's active policy
// set and stamps the result with the set's content-hash version.
func (e *Engine) EvaluateStore(ctx context.Context, appCtx *match.Context, store *policy.Store) (*match.Result, error) {
	result, err := e.Evaluate(ctx, appCtx, store.All())
	if err != nil {
		return nil, err
	}
	result.PolicySetVersion = store.Version()
	return result, nil
}

// rank orders eligible matches by fit score descending (ties keep policy
// order) and assigns contiguous 1-based ranks; ineligible lenders follow
// unranked in policy order.
func rank(evaluated []match.LenderMatch) *match.Result {
	eligible := make([]int, 0, len(evaluated))
	rest := make([]int, 0, len(evaluated))
	for i := range evaluated {
		if evaluated[i].Eligible {
			eligible = append(eligible, i)
		} else {
			rest = append(rest, i)
		}
	}

	sort.SliceStable(eligible, func(a, b int) bool {
		return evaluated[eligible[a]].FitScore > evaluated[eligible[b]].FitScore
	})

	matches := make([]match.LenderMatch, 0, len(evaluated))
	for pos, idx := range eligible {
		m := evaluated[idx]
		r := pos + 1
		m.Rank = &r
		matches = append(matches, m)
	}
	for _, idx := range rest {
		matches = append(matches, evaluated[idx])
	}

	result := &match.Result{
		Matches:        matches,
		TotalEvaluated: len(evaluated),
		TotalEligible:  len(eligible),
	}
	if len(eligible) > 0 {
		result.BestMatch = &result.Matches[0]
	}
	return result
}

// concurrency resolves the semaphore size for a fan-out of n lenders.
func concurrency(max, n int) int {
	if n == 0 {
		return 1
	}
	if max <= 0 || max > n {
		return n
	}
	return max
}
