// Package console is a terminal helm: it drives one vessel from the keyboard
// and draws its gauges with tcell.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/deepwake/sub-engine/internal/config"
	"github.com/deepwake/sub-engine/internal/helm"
	"github.com/deepwake/sub-engine/internal/kinematics"
	"github.com/deepwake/sub-engine/internal/vessel"
)

// maxFrame caps the dt of a single tick so a stalled terminal does not
// teleport the vessel.
const maxFrame = 100 * time.Millisecond

// Sound is the audio the helm drives. A nil Sound is silent.
type Sound interface {
	SetThrottle(x float64)
	Ping()
}

// Console runs the helm loop. It is not safe for concurrent use except for
// Reload.
type Console struct {
	screen tcell.Screen
	vessel *vessel.Vessel
	cfg    *config.Config
	latch  *helm.KeyLatch
	sound  Sound
	log    *slog.Logger

	reloads  chan *config.Config
	last     vessel.Log
	lastTick time.Time
	status   string
}

// New creates a helm for v. The screen must already be initialized; the
// caller owns it and calls Fini.
func New(screen tcell.Screen, v *vessel.Vessel, cfg *config.Config, sound Sound, log *slog.Logger) *Console {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Console{
		screen:  screen,
		vessel:  v,
		cfg:     cfg,
		latch:   helm.NewKeyLatch(cfg.Console.HoldWindow.Duration),
		sound:   sound,
		log:     log,
		reloads: make(chan *config.Config, 1),
		last:    v.Log(),
	}
}

// Reload hands a new configuration to the running loop. Only the most
// recent pending configuration is kept.
func (c *Console) Reload(cfg *config.Config) {
	for {
		select {
		case c.reloads <- cfg:
			return
		default:
		}
		select {
		case <-c.reloads:
		default:
		}
	}
}

// Run ticks and redraws at the configured rate until ctx is cancelled or the
// pilot quits.
func (c *Console) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.Console.TickRate))
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	c.lastTick = time.Now()
	c.draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !c.handleEvent(ev, time.Now()) {
				return nil
			}

		case cfg := <-c.reloads:
			c.applyConfig(cfg)

		case now := <-ticker.C:
			c.tick(now)
			c.draw()
		}
	}
}

// handleEvent reacts to one terminal event. It returns false when the pilot quits.
func (c *Console) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			c.latch.Press(helm.ActionForward, now)
		case tcell.KeyDown:
			c.latch.Press(helm.ActionBackward, now)
		case tcell.KeyLeft:
			c.latch.Press(helm.ActionLeft, now)
		case tcell.KeyRight:
			c.latch.Press(helm.ActionRight, now)
		case tcell.KeyPgUp:
			c.latch.Press(helm.ActionUp, now)
		case tcell.KeyPgDn:
			c.latch.Press(helm.ActionDown, now)
		case tcell.KeyRune:
			c.handleRune(ev.Rune(), now)
		}

	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

func (c *Console) handleRune(r rune, now time.Time) {
	switch r {
	case '+', '=':
		c.vessel.Controls.TierUp()
	case '-', '_':
		c.vessel.Controls.TierDown()
	case '0':
		c.vessel.Controls.StopTier()
	case 'x', 'X':
		c.latch.Clear()
		c.vessel.Controls.StopTier()
		c.status = "ALL STOP"
	case 'p', 'P':
		if c.sound != nil {
			c.sound.Ping()
		}
	default:
		c.latch.Press(helm.ActionForRune(r), now)
	}
}

// tick advances the vessel by the wall time since the previous tick.
func (c *Console) tick(now time.Time) {
	dt := min(now.Sub(c.lastTick), maxFrame)
	c.lastTick = now

	c.last = c.vessel.Tick(c.latch.Keys(now), max(0, dt.Seconds()))
	if c.sound != nil {
		c.sound.SetThrottle(c.last.NormalizedSpeed)
	}
}

// applyConfig pushes a reloaded configuration into the running vessel.
func (c *Console) applyConfig(cfg *config.Config) {
	cfg.Reconfigure(c.vessel)
	if cfg.Vessel.Model != c.cfg.Vessel.Model {
		c.log.Warn("model change needs a restart", "running", c.vessel.Model().Name(), "configured", cfg.Vessel.Model)
	}
	c.latch = helm.NewKeyLatch(cfg.Console.HoldWindow.Duration)
	c.cfg = cfg
	c.status = "CONFIG RELOADED"
}

var (
	styleText  = tcell.StyleDefault
	styleLabel = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleGauge = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleAstrn = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleWarn  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDim   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const gaugeWidth = 30

func (c *Console) draw() {
	s := c.screen
	s.Clear()
	l := c.last

	drawText(s, 1, 0, styleLabel, "HELM ")
	drawText(s, 6, 0, styleText, c.vessel.ID)

	drawText(s, 1, 2, styleLabel, "SPEED")
	drawText(s, 8, 2, styleText, fmt.Sprintf("%6.1f kn  %-8s", l.Knots, l.Direction))
	drawText(s, 1, 3, styleLabel, "ORDER")
	drawText(s, 8, 3, styleText, l.Tier)

	gaugeStyle := styleGauge
	if l.Direction == kinematics.DirectionBackward {
		gaugeStyle = styleAstrn
	}
	drawText(s, 1, 4, styleDim, "[")
	drawText(s, 2, 4, gaugeStyle, gauge(l.NormalizedSpeed, gaugeWidth))
	drawText(s, 2+gaugeWidth, 4, styleDim, "]")

	drawText(s, 1, 6, styleLabel, "DEPTH")
	drawText(s, 8, 6, styleText, fmt.Sprintf("%6.1f m", l.Depth))
	drawText(s, 1, 7, styleLabel, "HDG")
	drawText(s, 8, 7, styleText, fmt.Sprintf("%03.0f°", compass(l.Transform.Heading)))
	drawText(s, 1, 8, styleLabel, "POS")
	drawText(s, 8, 8, styleText, fmt.Sprintf("x %8.1f  z %8.1f", l.Transform.X, l.Transform.Z))

	row := 10
	if l.DiveBrake {
		drawText(s, 1, row, styleWarn, "DIVE BRAKE")
		row++
	}
	if l.ReverseBrake {
		drawText(s, 1, row, styleWarn, "REVERSE BRAKE")
		row++
	}
	if c.status != "" {
		drawText(s, 1, row, styleDim, c.status)
	}

	_, h := s.Size()
	drawText(s, 1, h-1, styleDim, "w/s thrust  a/d turn  q/e climb/dive  +/- order  x stop  p ping  esc quit")
	s.Show()
}

// gauge renders fraction in [0, 1] as a bar of the given width.
func gauge(fraction float64, width int) string {
	filled := int(math.Round(math.Max(0, math.Min(1, fraction)) * float64(width)))
	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '░'
		if i < filled {
			bar[i] = '█'
		}
	}
	return string(bar)
}

// compass converts a left-positive heading in radians to degrees clockwise
// from north in [0, 360).
func compass(heading float32) float64 {
	return math.Mod(360-math.Mod(float64(heading)*180/math.Pi, 360), 360)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
