package world

import (
	"testing"

	"github.com/Kjarrigan/base-builder/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestDirectionOffsets(t *testing.T) {
	assert.Equal(t, vec.Vec2{X: 0, Y: -1}, North.Offset())
	assert.Equal(t, vec.Vec2{X: 1, Y: 0}, East.Offset())
	assert.Equal(t, vec.Vec2{X: 0, Y: 1}, South.Offset())
	assert.Equal(t, vec.Vec2{X: -1, Y: 0}, West.Offset())

	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite())
		assert.Equal(t, vec.Vec2{}, d.Offset().Add(d.Opposite().Offset()))
	}
}

func TestConnectivitySet(t *testing.T) {
	c := ConnectivityOf(West, North)
	assert.True(t, c.Has(North))
	assert.True(t, c.Has(West))
	assert.False(t, c.Has(East))
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, []Direction{North, West}, c.Directions())
	assert.Equal(t, "N_W", c.String())
	assert.Equal(t, ConnectivityOf(West), c.Without(North))
	assert.Equal(t, "", Connectivity(0).String())
	assert.Len(t, allConnectivities(), 16)
}
