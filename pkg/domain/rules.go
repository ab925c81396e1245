package domain

import "context"

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine whether an operation proceeds.
const (
	// SeverityBlock aborts the operation.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but lets the operation proceed.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Action names what happened to a component.
type Action string

// Actions recorded as changes during a simulated day or an order.
const (
	ActionGrow      Action = "grow"
	ActionWater     Action = "water"
	ActionFertilize Action = "fertilize"
	ActionSell      Action = "sell"
)

// Change describes one mutation presented to the rules.
type Change struct {
	Action Action
	Target ID
	Name   string
	Before Stage
	After  Stage
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   string
	EntityID ID
}

// Result aggregates violations.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "blocked by rule " + v.Rule + ": " + v.Message
		}
	}
	return "blocked by rules"
}

// RuleView provides read-only access to the nursery for rule evaluation.
type RuleView interface {
	Day() int
	Plants() []*Plant
	FindComponent(id ID) (Component, bool)
}

// Rule defines an evaluation run after a simulated day or before a sale.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in registration order.
func (e *RulesEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
