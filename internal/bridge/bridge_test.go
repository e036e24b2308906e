package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepwake/sub-engine/internal/vessel"
)

func TestCreateTickRemove(t *testing.T) {
	r := NewRegistry()

	h, err := r.Create(`{"vessel_id":"u1","initial":{"y":-30}}`)
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h)
	assert.Equal(t, 1, r.Len())

	var log vessel.Log
	for i := 0; i < 30; i++ {
		out, err := r.Tick(h, `{"forward":true}`, 1.0/60)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &log))
	}
	assert.Equal(t, "u1", log.VesselID)
	assert.Greater(t, log.Velocity, 0.0)
	assert.Equal(t, float32(30), log.Depth)

	require.NoError(t, r.Remove(h))
	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, r.Remove(h), ErrUnknownHandle)
}

func TestCreateDefaults(t *testing.T) {
	r := NewRegistry()
	h1, err := r.Create("")
	require.NoError(t, err)
	h2, err := r.Create(`{"hull":{"kinematics":{"model":"constant"}}}`)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	out, err := r.Tick(h2, "", 0.1)
	require.NoError(t, err)
	var log vessel.Log
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "vessel-2", log.VesselID)
	assert.Equal(t, 0.0, log.Velocity)
}

func TestCreateErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create(`{`)
	assert.Error(t, err)
	_, err = r.Create(`{"hull":{"kinematics":{"model":"warp"}}}`)
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestUnknownHandle(t *testing.T) {
	r := NewRegistry()
	_, err := r.Tick(7, `{}`, 0.1)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.ErrorIs(t, r.Configure(7, `{}`), ErrUnknownHandle)
	_, err = r.Tier(7, 1)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestConfigureAndTier(t *testing.T) {
	r := NewRegistry()
	h, err := r.Create("")
	require.NoError(t, err)

	require.NoError(t, r.Configure(h, `{"max_speed":3,"mass":2}`))
	assert.Error(t, r.Configure(h, `{"mass":"heavy"}`))

	label, err := r.Tier(h, 1)
	require.NoError(t, err)
	assert.Equal(t, "AHEAD 25%", label)
	label, err = r.Tier(h, 0)
	require.NoError(t, err)
	assert.Equal(t, "STOP", label)
	label, err = r.Tier(h, -1)
	require.NoError(t, err)
	assert.Equal(t, "ASTERN 50%", label)

	_, err = r.Tick(h, `{"forward":"yes"}`, 0.1)
	assert.Error(t, err)
}

func TestConfigureRejectsDegenerateParams(t *testing.T) {
	r := NewRegistry()
	h, err := r.Create("")
	require.NoError(t, err)

	for _, params := range []string{
		`{"water_resistance":0}`,
		`{"max_speed":0}`,
		`{"max_speed":-1}`,
		`{"mass":-0.5}`,
	} {
		assert.Error(t, r.Configure(h, params), params)
	}

	// The rejected values never reached the model.
	out, err := r.Tick(h, `{"forward":true,"left":true}`, 0.1)
	require.NoError(t, err)
	var log vessel.Log
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Greater(t, log.Rotation, 0.0)
	assert.Greater(t, log.Velocity, 0.0)
}
