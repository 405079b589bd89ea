package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (reportsync <-> broker).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	// ContextKeyCorrelationId is the broker message id, or the backfill run id.
	ContextKeyCorrelationId = ContextKey("CorrelationId")

	// ContextKeySource tells handlers whether they run for the consumer or a backfill.
	ContextKeySource = ContextKey("Source")

	// ContextKeyDryRun makes handlers fetch and validate without writing.
	ContextKeyDryRun = ContextKey("DryRun")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func CorrelationId(ctx context.Context) string {
	v, _ := GetString(ctx, ContextKeyCorrelationId)
	return v
}

func IsDryRun(ctx context.Context) bool {
	v, _ := GetBool(ctx, ContextKeyDryRun)
	return v
}
