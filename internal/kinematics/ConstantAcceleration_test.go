package kinematics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantAccelerateStepReachesTargetMidStep(t *testing.T) {
	c := NewConstantAcceleration(ConstantConfig{AAcc: 2, ADcc: 1, VMax: 10})

	dist, v := c.AccelerateStep(9, 10, 1)
	assert.Equal(t, 10.0, v)
	// 0.5 s accelerating from 9 to 10, then 0.5 s cruising at 10
	assert.InDelta(t, 9*0.5+0.5*2*0.25+10*0.5, dist, 1e-12)

	dist, v = c.AccelerateStep(0, 10, 1)
	assert.Equal(t, 2.0, v)
	assert.InDelta(t, 1.0, dist, 1e-12)
}

func TestConstantDecelerateStepNeverReverses(t *testing.T) {
	c := NewConstantAcceleration(ConstantConfig{AAcc: 2, ADcc: 4, VMax: 10})

	dist, v := c.DecelerateStep(2, 0, 1)
	assert.Equal(t, 0.0, v)
	assert.InDelta(t, 0.5, dist, 1e-12)
}

func TestConstantReversalPassesThroughRest(t *testing.T) {
	c := NewConstantAcceleration(ConstantConfig{AAcc: 5, ADcc: 5, VMax: 10})
	for i := 0; i < 200; i++ {
		c.Update(Input{Forward: true}, tick)
	}
	require.Equal(t, 10.0, c.Velocity())

	first := c.Update(Input{Backward: true}, tick)
	assert.Equal(t, 0.0, first.Target)

	prev := first.Velocity
	sawRest := false
	for i := 0; i < 600; i++ {
		res := c.Update(Input{Backward: true}, tick)
		if res.Velocity == 0 {
			sawRest = true
		}
		if !sawRest {
			require.LessOrEqual(t, res.Velocity, prev)
			require.GreaterOrEqual(t, res.Velocity, 0.0)
		}
		prev = res.Velocity
	}
	assert.True(t, sawRest)
	assert.Equal(t, -10.0, c.Velocity())
	assert.Equal(t, DirectionBackward, c.Update(Input{Backward: true}, tick).Direction)
}

func TestConstantTurnAndApply(t *testing.T) {
	c := NewConstantAcceleration(DefaultConstantConfig())

	res := c.Update(Input{Left: true}, 0.5)
	assert.InDelta(t, 0.45, res.Rotation, 1e-12)
	res = c.Update(Input{Right: true}, 0.5)
	assert.InDelta(t, -0.45, res.Rotation, 1e-12)

	// Rotation speed arrives per reference tick.
	speed, rate := 12.0, 0.002
	c.Apply(Params{MaxSpeed: &speed, RotationSpeed: &rate})
	assert.Equal(t, 12.0, c.MaxSpeed())
	res = c.Update(Input{Left: true}, 1)
	assert.InDelta(t, 0.12, res.Rotation, 1e-12)

	c.Reset()
	assert.Zero(t, c.Velocity())
}
