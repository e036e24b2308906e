package audio

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = beep.SampleRate(8000)

// rms streams n samples from s and returns their root mean square.
func rms(t *testing.T, s beep.Streamer, n int) float64 {
	t.Helper()
	buf := make([][2]float64, n)
	got, _ := s.Stream(buf)
	require.Equal(t, n, got)
	var sum float64
	for _, smp := range buf {
		sum += smp[0] * smp[0]
	}
	return math.Sqrt(sum / float64(n))
}

func TestEngineHumFollowsThrottle(t *testing.T) {
	h := NewEngineHum(testRate)
	idle := rms(t, h, 4000)
	assert.Greater(t, idle, 0.0)

	h.SetThrottle(1)
	rms(t, h, 4000) // slew up
	full := rms(t, h, 4000)
	assert.Greater(t, full, idle*2)

	buf := make([][2]float64, 512)
	n, ok := h.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 512, n)
	for _, smp := range buf {
		assert.LessOrEqual(t, math.Abs(smp[0]), 1.0)
		assert.Equal(t, smp[0], smp[1])
	}
	assert.NoError(t, h.Err())
}

func TestEngineHumClampsThrottle(t *testing.T) {
	h := NewEngineHum(testRate)
	h.SetThrottle(3)
	assert.Equal(t, 1.0, h.Throttle())
	h.SetThrottle(-1)
	assert.Equal(t, 0.0, h.Throttle())
}

func TestSonarPingEnds(t *testing.T) {
	ping, err := NewSonarPing(testRate)
	require.NoError(t, err)
	buf := make([][2]float64, 256)

	total, peak := 0, 0.0
	for {
		n, ok := ping.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok || total > int(testRate)*5 {
			break
		}
	}

	want := testRate.N(pingEchoWait + pingLength)
	assert.InDelta(t, want, total, 256)
	assert.Greater(t, peak, 0.3)
	assert.LessOrEqual(t, peak, 1.0)
}

func TestManagerWithoutDevice(t *testing.T) {
	m := NewManager(0.5, slog.New(slog.DiscardHandler))
	m.SetThrottle(0.7)
	assert.Equal(t, 0.7, m.Hum().Throttle())

	// Without Init these are no-ops.
	m.Ping()
	m.SetMuted(true)
	m.Close()
}

func TestManagerLogsPingFailure(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(0.5, slog.New(slog.NewTextHandler(&buf, nil)))
	m.initialized = true
	m.newPing = func(beep.SampleRate) (beep.Streamer, error) {
		return nil, errors.New("no tone")
	}

	m.Ping()
	assert.Contains(t, buf.String(), "sonar ping unavailable")
	assert.Contains(t, buf.String(), "no tone")
}
