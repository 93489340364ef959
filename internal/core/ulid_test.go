// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberclient/emberclient/internal/core"
)

func TestNewULID_Monotonic(t *testing.T) {
	a := core.NewULID()
	b := core.NewULID()
	assert.Equal(t, -1, a.Compare(b), "ULIDs should be strictly increasing")
}

func TestParseULID(t *testing.T) {
	id := core.NewULID()

	parsed, err := core.ParseULID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = core.ParseULID("not-a-ulid")
	assert.Error(t, err)
}
