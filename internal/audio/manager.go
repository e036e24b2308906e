package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Manager owns the speaker and the streams mixed into it.
type Manager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	hum         *EngineHum
	humCtrl     *beep.Ctrl
	volume      float64
	initialized bool
	log         *slog.Logger

	newPing func(beep.SampleRate) (beep.Streamer, error)
}

// NewManager creates a silent manager. Call Init before anything is heard.
func NewManager(volume float64, log *slog.Logger) *Manager {
	return &Manager{
		mixer:   &beep.Mixer{},
		hum:     NewEngineHum(sampleRate),
		volume:  volume,
		log:     log,
		newPing: NewSonarPing,
	}
}

// Init opens the audio device and starts the engine hum.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}

	m.humCtrl = &beep.Ctrl{Streamer: m.hum}
	m.mixer.Add(m.humCtrl)
	speaker.Play(newVolume(m.mixer, m.volume))
	m.initialized = true
	return nil
}

// Hum returns the engine hum stream.
func (m *Manager) Hum() *EngineHum { return m.hum }

// SetThrottle updates the hum from a normalized speed.
func (m *Manager) SetThrottle(x float64) {
	m.hum.SetThrottle(x)
}

// Ping plays one sonar ping.
func (m *Manager) Ping() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	ping, err := m.newPing(sampleRate)
	if err != nil {
		m.log.Warn("sonar ping unavailable", "err", err)
		return
	}
	speaker.Lock()
	m.mixer.Add(ping)
	speaker.Unlock()
}

// SetMuted pauses or resumes the hum.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Lock()
	m.humCtrl.Paused = muted
	speaker.Unlock()
}

// Close stops all sound and releases the device.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}
