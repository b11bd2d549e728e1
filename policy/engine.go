// Package policy gates meeting writes through an OPA policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the scheduling policy.
const (
	DecisionAllow   = "allow"
	DecisionConfirm = "confirm"
	DecisionBlock   = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	decision rego.PreparedEvalQuery
	reason   rego.PreparedEvalQuery
}

// Input is what the policy sees for a proposed meeting write.
type Input struct {
	Action          string   `json:"action"`
	Title           string   `json:"title"`
	DurationMinutes int      `json:"duration_minutes"`
	Conflicts       []string `json:"conflicts"`
	Confirmed       bool     `json:"confirmed"`
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	decision, err := rego.New(
		rego.Query("data.meeting_policy.decision"),
		rego.Module("meeting_policy.rego", policyContent),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	reason, err := rego.New(
		rego.Query("data.meeting_policy.reason"),
		rego.Module("meeting_policy.rego", policyContent),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{decision: decision, reason: reason}, nil
}

// Evaluate returns the decision (allow, confirm, block) and an optional reason.
func (e *Engine) Evaluate(ctx context.Context, in Input) (string, string, error) {
	input := map[string]interface{}{
		"action":           in.Action,
		"title":            in.Title,
		"duration_minutes": in.DurationMinutes,
		"conflicts":        toInterfaces(in.Conflicts),
		"confirmed":        in.Confirmed,
	}

	decision, err := evalString(ctx, e.decision, input)
	if err != nil {
		return "", "", err
	}
	if decision == "" {
		decision = fallbackDecision(in)
	}

	reason, err := evalString(ctx, e.reason, input)
	if err != nil {
		return "", "", err
	}
	return decision, reason, nil
}

// fallbackDecision is used when the loaded policy leaves decision undefined.
// Unconfirmed overlaps still wait for the user.
func fallbackDecision(in Input) string {
	if len(in.Conflicts) > 0 && !in.Confirmed {
		return DecisionConfirm
	}
	return DecisionAllow
}

func evalString(ctx context.Context, q rego.PreparedEvalQuery, input interface{}) (string, error) {
	results, err := q.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", nil
	}
	s, _ := results[0].Expressions[0].Value.(string)
	return s, nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package meeting_policy

default decision = "allow"
default reason = ""

# Overlapping meetings wait for the user to confirm on a later turn.
decision = "confirm" {
	input.action == "create"
	input.duration_minutes > 0
	count(input.conflicts) > 0
	not input.confirmed
}

decision = "block" {
	input.duration_minutes <= 0
}

reason = "meetings need a positive duration" {
	input.duration_minutes <= 0
}
`
