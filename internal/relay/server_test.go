package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T, mutate func(*Config)) (*Server, string) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s := NewServer(cfg, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, "ws" + strings.TrimPrefix(ts.URL, "http") + cfg.Path
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func readRaw(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(readRaw(t, conn), &env))
	return env
}

func register(t *testing.T, conn *websocket.Conn, role Role, room string) {
	t.Helper()
	sendJSON(t, conn, `{"type":"register","role":"`+string(role)+`","room":"`+room+`"}`)
	env := readEnvelope(t, conn)
	require.Equal(t, TypeRegistered, env.Type)
	require.Equal(t, role, env.Role)
}

func TestRegisterAndForward(t *testing.T) {
	_, url := newTestRelay(t, nil)
	host := dial(t, url)
	guest := dial(t, url)

	register(t, host, RoleHost, "")
	register(t, guest, RoleGuest, "")

	joined := readEnvelope(t, host)
	assert.Equal(t, TypePeerJoined, joined.Type)
	assert.Equal(t, RoleGuest, joined.Role)
	assert.Equal(t, DefaultRoom, joined.Room)
	joined = readEnvelope(t, guest)
	assert.Equal(t, TypePeerJoined, joined.Type)
	assert.Equal(t, RoleHost, joined.Role)

	offer := `{"type":"offer","payload":{"sdp":"v=0 host","type":"offer"}}`
	sendJSON(t, host, offer)
	assert.Equal(t, offer, string(readRaw(t, guest)))

	answer := `{"type":"answer","payload":{"sdp":"v=0 guest"}}`
	sendJSON(t, guest, answer)
	assert.Equal(t, answer, string(readRaw(t, host)))

	ice := `{"type":"ice-candidate","payload":{"candidate":"a=1"}}`
	sendJSON(t, guest, ice)
	assert.Equal(t, ice, string(readRaw(t, host)))
	sendJSON(t, host, ice)
	assert.Equal(t, ice, string(readRaw(t, guest)))
}

func TestRoleTaken(t *testing.T) {
	_, url := newTestRelay(t, nil)
	first := dial(t, url)
	second := dial(t, url)

	register(t, first, RoleHost, "r1")
	sendJSON(t, second, `{"type":"register","role":"host","room":"r1"}`)
	env := readEnvelope(t, second)
	assert.Equal(t, TypeError, env.Type)
	assert.Contains(t, string(env.Payload), ErrRoleTaken.Error())

	// Same role in another room is fine.
	register(t, second, RoleHost, "r2")
}

func TestErrors(t *testing.T) {
	_, url := newTestRelay(t, nil)
	conn := dial(t, url)

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"malformed", `{not json`, "malformed"},
		{"unregistered", `{"type":"offer"}`, "not registered"},
		{"bad role", `{"type":"register","role":"spectator"}`, "invalid role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sendJSON(t, conn, tt.msg)
			env := readEnvelope(t, conn)
			assert.Equal(t, TypeError, env.Type)
			assert.Contains(t, string(env.Payload), tt.want)
		})
	}

	register(t, conn, RoleGuest, "")

	sendJSON(t, conn, `{"type":"offer"}`)
	env := readEnvelope(t, conn)
	assert.Equal(t, TypeError, env.Type)
	assert.Contains(t, string(env.Payload), "only the host")

	sendJSON(t, conn, `{"type":"answer"}`)
	env = readEnvelope(t, conn)
	assert.Contains(t, string(env.Payload), "peer not connected")

	sendJSON(t, conn, `{"type":"telemetry"}`)
	env = readEnvelope(t, conn)
	assert.Contains(t, string(env.Payload), "unknown message type")

	sendJSON(t, conn, `{"type":"register","role":"host"}`)
	env = readEnvelope(t, conn)
	assert.Contains(t, string(env.Payload), "already registered")
}

func TestPeerLeftFreesRole(t *testing.T) {
	s, url := newTestRelay(t, nil)
	host := dial(t, url)
	guest := dial(t, url)

	register(t, host, RoleHost, "")
	register(t, guest, RoleGuest, "")
	readEnvelope(t, host)  // peer-joined
	readEnvelope(t, guest) // peer-joined

	require.NoError(t, guest.Close())
	env := readEnvelope(t, host)
	assert.Equal(t, TypePeerLeft, env.Type)
	assert.Equal(t, RoleGuest, env.Role)

	again := dial(t, url)
	register(t, again, RoleGuest, "")
	assert.Equal(t, TypePeerJoined, readEnvelope(t, host).Type)

	require.NoError(t, host.Close())
	require.NoError(t, again.Close())
	assert.Eventually(t, func() bool { return s.RoomCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginCheck(t *testing.T) {
	_, url := newTestRelay(t, func(c *Config) {
		c.AllowedOrigins = []string{"https://sub.example"}
	})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://sub.example")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestForwardTarget(t *testing.T) {
	to, err := forwardTarget(TypeOffer, RoleHost)
	require.NoError(t, err)
	assert.Equal(t, RoleGuest, to)

	to, err = forwardTarget(TypeAnswer, RoleGuest)
	require.NoError(t, err)
	assert.Equal(t, RoleHost, to)

	to, err = forwardTarget(TypeICECandidate, RoleGuest)
	require.NoError(t, err)
	assert.Equal(t, RoleHost, to)

	_, err = forwardTarget(TypeAnswer, RoleHost)
	assert.Error(t, err)
	_, err = forwardTarget("bogus", RoleHost)
	assert.Error(t, err)
}
