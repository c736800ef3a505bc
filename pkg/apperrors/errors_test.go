// SPDX-License-Identifier: Apache-2.0

package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_NilCause(t *testing.T) {
	e := New(MalformedAsset, "", nil)
	assert.NotContains(t, e.Error(), "<nil>")
	assert.Equal(t, "MalformedAsset: unknown cause", e.Error())
}

func TestError_NilCauseWithResource(t *testing.T) {
	e := New(MalformedAsset, "tit 1:3", nil)
	assert.Equal(t, "MalformedAsset [tit 1:3]: unknown cause", e.Error())
}

func TestError_WithCause(t *testing.T) {
	e := New(ProvisionFailure, "en/scripture/tit", errors.New("connection reset"))
	assert.Equal(t, "ProvisionFailure [en/scripture/tit]: connection reset", e.Error())
}

func TestError_Is_MatchesOnKindAlone(t *testing.T) {
	a := New(CatalogMiss, "en/notes/tit", errors.New("boom"))
	b := New(CatalogMiss, "", nil)
	assert.True(t, errors.Is(a, b))

	c := New(ProvisionFailure, "", nil)
	assert.False(t, errors.Is(a, c))
}
