package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

// Rule disables Action for rows matching When, a boolean CEL expression over
// `row` (the record as a map) and `now` (timestamp).
//
//	action: edit
//	when: row.status == "Validé"
//	reason: Validated needs can no longer be edited.
type Rule struct {
	Action string `yaml:"action" json:"action" mapstructure:"action"`
	When   string `yaml:"when" json:"when" mapstructure:"when"`
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty" mapstructure:"reason"`
}

type compiledRule struct {
	kind   action.Kind
	expr   string
	reason string
	prg    cel.Program
}

// Rules is a CEL-backed action.Policy. Rules are evaluated on every call.
type Rules struct {
	rules []compiledRule
	clock func() time.Time
	log   logr.Logger
}

// RulesOption configures Rules.
type RulesOption func(*Rules)

// WithClock overrides the value bound to `now`.
func WithClock(clock func() time.Time) RulesOption {
	return func(r *Rules) { r.clock = clock }
}

// WithLogger sets the logger used for evaluation failures.
func WithLogger(l logr.Logger) RulesOption {
	return func(r *Rules) { r.log = l }
}

// NewEnv returns the CEL environment rule expressions compile against.
func NewEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("now", cel.TimestampType),
		cel.CrossTypeNumericComparisons(true),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewRules compiles rules. Every expression must type-check to bool.
func NewRules(rules []Rule, opts ...RulesOption) (*Rules, error) {
	r := &Rules{clock: time.Now, log: *logger.GetGlobalLogger()}
	for _, opt := range opts {
		opt(r)
	}
	if len(rules) == 0 {
		return r, nil
	}
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}
	for i, rule := range rules {
		kind, err := action.ParseKind(rule.Action)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		expr := strings.TrimSpace(rule.When)
		if expr == "" {
			return nil, fmt.Errorf("rule %d (%s): empty expression", i, kind)
		}
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %d (%s): compilation error: %w", i, kind, issues.Err())
		}
		if !ast.OutputType().IsExactType(types.BoolType) && !ast.OutputType().IsExactType(types.DynType) {
			return nil, fmt.Errorf("rule %d (%s): expression must be boolean, got %s", i, kind, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): program error: %w", i, kind, err)
		}
		r.rules = append(r.rules, compiledRule{kind: kind, expr: expr, reason: rule.Reason, prg: prg})
	}
	return r, nil
}

// Len returns the number of compiled rules.
func (r *Rules) Len() int { return len(r.rules) }

// Disabled reports whether any rule for kind matches row. Rules that fail to
// evaluate (missing field, wrong type) do not disable.
func (r *Rules) Disabled(kind action.Kind, row record.Row) bool {
	_, hit := r.match(kind, row)
	return hit
}

// Reason returns the reason of the first matching rule.
func (r *Rules) Reason(kind action.Kind, row record.Row) string {
	rule, hit := r.match(kind, row)
	if !hit {
		return ""
	}
	return rule.reason
}

func (r *Rules) match(kind action.Kind, row record.Row) (compiledRule, bool) {
	var vars map[string]any
	for _, rule := range r.rules {
		if rule.kind != kind {
			continue
		}
		if vars == nil {
			vars = map[string]any{"row": rowMap(row), "now": r.clock()}
		}
		out, _, err := rule.prg.Eval(vars)
		if err != nil {
			r.log.V(1).Info("policy rule did not evaluate", "action", kind.String(), "expr", rule.expr, logger.RowIDKey, row.RowID(), "error", err.Error())
			continue
		}
		if b, ok := out.Value().(bool); ok && b {
			return rule, true
		}
	}
	return compiledRule{}, false
}

func rowMap(row record.Row) map[string]any {
	switch r := row.(type) {
	case record.Record:
		return map[string]any(r)
	case interface{ AsMap() map[string]any }:
		return r.AsMap()
	}
	return map[string]any{record.IDField: row.RowID()}
}
