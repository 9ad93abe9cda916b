package slogx

import (
	"context"

	"github.com/samber/oops"
)

// LogError logs err at error level. Tagged errors contribute their code and
// attached context as separate attributes.
func LogError(ctx context.Context, msg string, err error) {
	logger := FromContext(ctx)

	oe, ok := oops.AsOops(err)
	if !ok {
		logger.ErrorContext(ctx, msg, "error", err)
		return
	}

	attrs := []any{"error", oe.Error()}
	if code := oe.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if domain := oe.Domain(); domain != "" {
		attrs = append(attrs, "domain", domain)
	}
	if kv := oe.Context(); len(kv) > 0 {
		attrs = append(attrs, "context", kv)
	}
	logger.ErrorContext(ctx, msg, attrs...)
}
