package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func TestStarTransitionAlternates(t *testing.T) {
	// first toggle creates an active star
	starred, delta := starTransition(nil)
	assert.True(t, starred)
	assert.Equal(t, 1, delta)

	// second toggle on the live row removes the star
	row := &types.KnowledgeBaseStar{ID: 1, IsDeleted: !starred}
	starred, delta = starTransition(row)
	assert.False(t, starred)
	assert.Equal(t, -1, delta)

	// third toggle restores it, ending where the first left off
	row.IsDeleted = !starred
	starred, delta = starTransition(row)
	assert.True(t, starred)
	assert.Equal(t, 1, delta)
}
