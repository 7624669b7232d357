// Package errutil logs errors with whatever structure they carry.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at Error level. Errors built with oops contribute their
// code and context map as separate attributes.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	attrs = append(attrs, "error", err)
	logger.Error(msg, attrs...)
}
