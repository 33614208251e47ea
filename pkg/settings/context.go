package settings

import "context"

type runKey struct{}

// IntoContext attaches the run settings of the current invocation to ctx.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runKey{}, s)
}

// FromContext returns the run settings stored by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(runKey{}).(*Run)
	return s, ok && s != nil
}

// Current returns the settings in ctx, or fresh defaults when a command runs
// without the root pre-run (tests calling RunE directly, library callers).
func Current(ctx context.Context) *Run {
	if s, ok := FromContext(ctx); ok {
		return s
	}
	return NewCliParams()
}
