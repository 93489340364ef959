// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package errutil_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/emberclient/emberclient/pkg/errutil"
)

func TestHasCode(t *testing.T) {
	err := oops.Code(errutil.CodeNotFound).Errorf("no such plugin")

	assert.True(t, errutil.HasCode(err, errutil.CodeNotFound))
	assert.False(t, errutil.HasCode(err, errutil.CodeAlreadyExists))
	assert.False(t, errutil.HasCode(errors.New("plain"), errutil.CodeNotFound))
	assert.False(t, errutil.HasCode(nil, errutil.CodeNotFound))
}

func TestLogWarn_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := oops.Code(errutil.CodeAlreadyExists).
		With("plugin", "chatfilter").
		Errorf("plugin already registered")
	errutil.LogWarn(logger, "register plugin failed", err)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "register plugin failed")
	assert.Contains(t, out, errutil.CodeAlreadyExists)
	assert.Contains(t, out, "chatfilter")
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	errutil.LogError(logger, "dispatch failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "code=")
}
