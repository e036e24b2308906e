package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepwake/sub-engine/internal/config"
	"github.com/deepwake/sub-engine/internal/vessel"
)

type fakeSound struct {
	throttle float64
	pings    int
}

func (f *fakeSound) SetThrottle(x float64) { f.throttle = x }
func (f *fakeSound) Ping() { f.pings++ }

func newTestConsole(t *testing.T) (*Console, tcell.SimulationScreen, *fakeSound) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(100, 24)
	t.Cleanup(screen.Fini)

	cfg := config.Default()
	v, err := cfg.NewVessel("u1", vessel.Transform{Y: -50})
	require.NoError(t, err)

	sound := &fakeSound{}
	return New(screen, v, cfg, sound, nil), screen, sound
}

// row reads one screen line back as text.
func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }
func char(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestHeldKeyDrivesVessel(t *testing.T) {
	c, _, sound := newTestConsole(t)
	start := time.Now()
	c.lastTick = start

	now := start
	for i := 0; i < 60; i++ {
		now = now.Add(16 * time.Millisecond)
		require.True(t, c.handleEvent(char('w'), now))
		c.tick(now)
	}
	assert.Greater(t, c.last.Velocity, 0.0)
	assert.Greater(t, sound.throttle, 0.0)
	assert.Equal(t, c.last.NormalizedSpeed, sound.throttle)

	// Without repeats the latch lets go and the vessel coasts.
	v := c.last.Velocity
	now = now.Add(time.Second)
	c.tick(now)
	assert.Less(t, c.last.Velocity, v)
}

func TestKeysAndOrders(t *testing.T) {
	c, _, sound := newTestConsole(t)
	now := time.Now()

	c.handleEvent(char('+'), now)
	c.handleEvent(char('+'), now)
	assert.Equal(t, "AHEAD 50%", c.vessel.Controls.TierLabel())
	c.handleEvent(char('-'), now)
	assert.Equal(t, "AHEAD 25%", c.vessel.Controls.TierLabel())
	c.handleEvent(char('0'), now)
	assert.Equal(t, "STOP", c.vessel.Controls.TierLabel())

	c.handleEvent(key(tcell.KeyLeft), now)
	assert.True(t, c.latch.Keys(now).Left)
	c.handleEvent(char('x'), now)
	assert.False(t, c.latch.Keys(now).Left)
	assert.Equal(t, "ALL STOP", c.status)

	c.handleEvent(char('p'), now)
	assert.Equal(t, 1, sound.pings)

	assert.False(t, c.handleEvent(key(tcell.KeyEscape), now))
	assert.False(t, c.handleEvent(key(tcell.KeyCtrlC), now))
}

func TestDraw(t *testing.T) {
	c, screen, _ := newTestConsole(t)
	c.vessel.Controls.TierUp()
	c.last = c.vessel.Log()
	c.draw()

	assert.Equal(t, " HELM u1", row(screen, 0))
	assert.Contains(t, row(screen, 3), "AHEAD 25%")
	assert.Contains(t, row(screen, 6), "50.0 m")
	assert.Contains(t, row(screen, 7), "000°")
	assert.Contains(t, row(screen, 23), "esc quit")
}

func TestApplyConfig(t *testing.T) {
	c, _, _ := newTestConsole(t)
	cfg := config.Default()
	cfg.Helm.VerticalSpeed = 12
	cfg.Vessel.Limits.MaxDepth = 20

	c.applyConfig(cfg)
	assert.Equal(t, 12.0, c.vessel.Controls.Config().VerticalSpeed)
	assert.Equal(t, float32(-20), c.vessel.Transform.Y)
	assert.Equal(t, "CONFIG RELOADED", c.status)
}

func TestRunQuitsAndReloads(t *testing.T) {
	c, screen, _ := newTestConsole(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cfg := config.Default()
	cfg.Helm.VerticalSpeed = 8
	c.Reload(cfg)
	require.Eventually(t, func() bool {
		return strings.Contains(row(screen, 10), "CONFIG RELOADED")
	}, 2*time.Second, 10*time.Millisecond)

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("console did not quit")
	}
	assert.Equal(t, 8.0, c.vessel.Controls.Config().VerticalSpeed)
}

func TestGaugeAndCompass(t *testing.T) {
	assert.Equal(t, "░░░░", gauge(0, 4))
	assert.Equal(t, "██░░", gauge(0.5, 4))
	assert.Equal(t, "████", gauge(2, 4))

	assert.InDelta(t, 0, compass(0), 1e-9)
	assert.InDelta(t, 90, compass(-1.5707964), 1e-4)
	assert.InDelta(t, 270, compass(1.5707964), 1e-4)
}
