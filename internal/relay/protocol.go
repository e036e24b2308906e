package relay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role is the side of a session a client registers as.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleHost {
		return RoleGuest
	}
	return RoleHost
}

func (r Role) valid() bool { return r == RoleHost || r == RoleGuest }

// Message types
const (
	// Client to relay
	TypeRegister = "register"

	// Forwarded between peers, untouched
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"

	// Relay to client
	TypeRegistered = "registered"
	TypePeerJoined = "peer-joined"
	TypePeerLeft   = "peer-left"
	TypeError      = "error"
)

// DefaultRoom is used when a register message names no room.
const DefaultRoom = "default"

var (
	// ErrRoleTaken is reported when a room already has a client in the requested role.
	ErrRoleTaken = errors.New("role already taken")

	errNotRegistered = errors.New("not registered")
	errNoPeer        = errors.New("peer not connected")
)

// Envelope is the JSON frame every message travels in. Payload is opaque to
// the relay.
type Envelope struct {
	Type    string          `json:"type"`
	Role    Role            `json:"role,omitempty"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// errorPayload is the body of a TypeError envelope.
type errorPayload struct {
	Message string `json:"message"`
}

func encode(env Envelope) []byte {
	data, err := json.Marshal(env)
	if err != nil {
		// Envelope fields are plain strings and already-valid raw JSON.
		panic(fmt.Sprintf("relay: encoding envelope: %v", err))
	}
	return data
}

func errorEnvelope(err error) []byte {
	payload, _ := json.Marshal(errorPayload{Message: err.Error()})
	return encode(Envelope{Type: TypeError, Payload: payload})
}

// forwardTarget returns the role a forwarded message from sender goes to.
// Offers flow host to guest and answers guest to host; ICE candidates go to
// whichever side did not send them.
func forwardTarget(typ string, sender Role) (Role, error) {
	switch typ {
	case TypeOffer:
		if sender != RoleHost {
			return "", fmt.Errorf("only the host may send %q", typ)
		}
	case TypeAnswer:
		if sender != RoleGuest {
			return "", fmt.Errorf("only the guest may send %q", typ)
		}
	case TypeICECandidate:
	default:
		return "", fmt.Errorf("unknown message type %q", typ)
	}
	return sender.Other(), nil
}
