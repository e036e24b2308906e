// Package audio synthesizes the helm's engine hum and sonar ping.
package audio

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Hum tuning
const (
	humIdleFreq   = 42.0  // Hz at rest
	humFullFreq   = 118.0 // Hz at full speed
	humIdleGain   = 0.08
	humFullGain   = 0.45
	humNoiseShare = 0.15 // fraction of the signal that is cavitation noise
	humSlew       = 4.0  // throttle units per second the pitch may follow
)

// EngineHum is an endless streamer whose pitch and loudness follow the
// vessel's normalized speed. The throttle may be set from any goroutine.
type EngineHum struct {
	rate     beep.SampleRate
	throttle atomic.Uint64 // math.Float64bits of the target, in [0, 1]

	level float64 // smoothed throttle, audio goroutine only
	phase float64
	rng   *rand.Rand
}

// NewEngineHum creates a hum at rest.
func NewEngineHum(rate beep.SampleRate) *EngineHum {
	return &EngineHum{rate: rate, rng: rand.New(rand.NewSource(1))}
}

// SetThrottle sets the normalized speed the hum follows. Values are clamped
// to [0, 1].
func (h *EngineHum) SetThrottle(x float64) {
	x = math.Max(0, math.Min(1, x))
	h.throttle.Store(math.Float64bits(x))
}

// Throttle returns the target set by SetThrottle.
func (h *EngineHum) Throttle() float64 {
	return math.Float64frombits(h.throttle.Load())
}

func (h *EngineHum) Stream(samples [][2]float64) (n int, ok bool) {
	target := h.Throttle()
	maxStep := humSlew / float64(h.rate)

	for i := range samples {
		switch d := target - h.level; {
		case d > maxStep:
			h.level += maxStep
		case d < -maxStep:
			h.level -= maxStep
		default:
			h.level = target
		}

		freq := humIdleFreq + (humFullFreq-humIdleFreq)*h.level
		gain := humIdleGain + (humFullGain-humIdleGain)*h.level

		// Fundamental plus a softer second harmonic reads as a shaft rather than a tone.
		tone := 0.7*math.Sin(2*math.Pi*h.phase) + 0.3*math.Sin(4*math.Pi*h.phase)
		noise := (h.rng.Float64()*2 - 1) * h.level
		val := gain * ((1-humNoiseShare)*tone + humNoiseShare*noise)

		samples[i][0] = val
		samples[i][1] = val

		h.phase += freq / float64(h.rate)
		h.phase -= math.Floor(h.phase)
	}
	return len(samples), true
}

func (h *EngineHum) Err() error { return nil }

// decay applies a linear attack then an exponential tail.
type decay struct {
	streamer beep.Streamer
	position int
	attack   int
	tau      float64 // samples
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := math.Exp(-float64(d.position-d.attack) / d.tau)
		if d.position < d.attack {
			vol = float64(d.position) / float64(d.attack)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// Sonar ping tuning
const (
	pingFreq     = 1480.0 // Hz
	pingLength   = 900 * time.Millisecond
	pingAttack   = 4 * time.Millisecond
	pingTau      = 180 * time.Millisecond
	pingEchoWait = 350 * time.Millisecond
	pingEchoGain = 0.3
)

// NewSonarPing returns a finite streamer: a ping followed by a fainter echo.
func NewSonarPing(rate beep.SampleRate) (beep.Streamer, error) {
	shape := func() (beep.Streamer, error) {
		tone, err := generators.SineTone(rate, pingFreq)
		if err != nil {
			return nil, err
		}
		return &decay{
			streamer: beep.Take(rate.N(pingLength), tone),
			attack:   max(1, rate.N(pingAttack)),
			tau:      float64(rate.N(pingTau)),
		}, nil
	}
	ping, err := shape()
	if err != nil {
		return nil, err
	}
	echo, err := shape()
	if err != nil {
		return nil, err
	}
	delayed := beep.Seq(beep.Silence(rate.N(pingEchoWait)), newVolume(echo, pingEchoGain))
	return beep.Mix(newVolume(ping, 0.6), delayed), nil
}

// newVolume scales a stream linearly; zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
