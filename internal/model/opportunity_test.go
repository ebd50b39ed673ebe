package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityTier_Rank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, PriorityP0.Rank())
	assert.Equal(t, 1, PriorityP1.Rank())
	assert.Equal(t, 2, PriorityP2.Rank())
	assert.Equal(t, 3, PriorityTier("P9").Rank())
}

func TestQuadrantGroups_All(t *testing.T) {
	t.Parallel()

	g := QuadrantGroups{
		GrowInvest:    []string{"a"},
		AcquireSkills: []string{"b", "c"},
		AvoidExit:     []string{"d"},
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, g.All())
	assert.Empty(t, QuadrantGroups{}.All())
}
