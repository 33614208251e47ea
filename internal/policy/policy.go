// Package policy provides action authorization policies for the dispatcher:
// function adapters, composition, and rule sets written as CEL expressions.
package policy

import (
	"github.com/oakwood-commons/trainctl/internal/action"
	"github.com/oakwood-commons/trainctl/internal/record"
)

// None never disables anything.
var None action.Policy = action.PolicyFunc(func(action.Kind, record.Row) bool { return false })

// Func adapts a predicate to action.Policy.
func Func(f func(kind action.Kind, row record.Row) bool) action.Policy {
	return action.PolicyFunc(f)
}

// Only restricts a predicate to a single action kind.
func Only(kind action.Kind, pred func(row record.Row) bool) action.Policy {
	return action.PolicyFunc(func(k action.Kind, row record.Row) bool {
		return k == kind && pred(row)
	})
}

type anyOf []action.Policy

// Any disables an action when any of the policies does. Nil entries are skipped.
func Any(policies ...action.Policy) action.Policy {
	out := make(anyOf, 0, len(policies))
	for _, p := range policies {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (a anyOf) Disabled(kind action.Kind, row record.Row) bool {
	for _, p := range a {
		if p.Disabled(kind, row) {
			return true
		}
	}
	return false
}

// Reason returns the explanation of the first disabling policy that has one.
func (a anyOf) Reason(kind action.Kind, row record.Row) string {
	for _, p := range a {
		if !p.Disabled(kind, row) {
			continue
		}
		if r, ok := p.(action.Reasoner); ok {
			if reason := r.Reason(kind, row); reason != "" {
				return reason
			}
		}
	}
	return ""
}
