// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package mcstr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberclient/emberclient/internal/mcstr"
)

func TestPool_NewGetSet(t *testing.T) {
	p := mcstr.NewPool()

	h := p.New("hello")
	require.NotZero(t, h)

	got, ok := p.Get(h)
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	h2, ok := p.Set(h, "goodbye")
	require.True(t, ok)
	assert.Equal(t, h, h2, "Set returns the same handle")

	got, ok = p.Get(h)
	require.True(t, ok)
	assert.Equal(t, "goodbye", got, "prior contents are not observable")
}

func TestPool_UnknownHandle(t *testing.T) {
	p := mcstr.NewPool()

	_, ok := p.Get(mcstr.Handle(99))
	assert.False(t, ok)

	_, ok = p.Set(mcstr.Handle(99), "x")
	assert.False(t, ok)
	assert.Zero(t, p.Len(), "failed Set must not allocate a cell")

	_, ok = p.Get(0)
	assert.False(t, ok, "zero handle is never valid")
}

func TestPool_HandlesAreDistinct(t *testing.T) {
	p := mcstr.NewPool()

	a := p.New("a")
	b := p.New("b")
	require.NotEqual(t, a, b)

	got, _ := p.Get(a)
	assert.Equal(t, "a", got)
	got, _ = p.Get(b)
	assert.Equal(t, "b", got)
	assert.Equal(t, 2, p.Len())
}
