package orchestrator

import "context"

type contextKey int

const keyRunID contextKey = iota

// ContextWithRunID returns a context carrying the run ID.
// Callbacks receive this context on every event of the run.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, keyRunID, runID)
}

// RunIDFromContext returns the run ID, or empty string outside of a run.
func RunIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(keyRunID).(string)
	return v
}
