// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// HasCode reports whether err is an oops error carrying code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}

// attrs flattens an error into slog attributes, extracting the code and
// context when it is an oops error.
func attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	out := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != "" {
		out = append(out, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		out = append(out, "context", ctx)
	}
	return out
}

// LogError logs an error with structured context. Used for failures the host
// did not expect.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, attrs(err)...)
}

// LogWarn logs an error at warning level. The boundary operations use it for
// contract failures that are routine for callers to trigger, such as
// duplicate registrations.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, attrs(err)...)
}
