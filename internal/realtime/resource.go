// Package realtime implements live change notifications over a single
// persistent websocket per client. The server side (Hub) maps resource keys
// to subscribed connections and fans out published events; the client side
// (Client) multiplexes any number of logical subscriptions over one
// connection and routes inbound events to locally registered callbacks.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the addressable entity class of a resource key.
type Kind string

const (
	KindUsers     Kind = "users"
	KindWorkouts  Kind = "workouts"
	KindExercises Kind = "exercises"
	KindSets      Kind = "sets"
	KindSubSets   Kind = "subsets"
)

// Key addresses one subscribable resource as "<kind>:<id>".
type Key string

// NewKey builds a resource key from a kind and an entity id.
func NewKey(kind Kind, id string) Key {
	return Key(string(kind) + ":" + id)
}

// Message types on the client → server side of the wire.
const (
	messageTypeSubscribe   = "subscribe"
	messageTypeUnsubscribe = "unsubscribe"
)

// controlMessage is a client → server subscribe/unsubscribe frame.
type controlMessage struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
}

// encodeEvent builds the server → client frame for a publish: the payload's
// own JSON object with a "resource" field injected for routing. The payload
// must marshal to a JSON object.
func encodeEvent(key Key, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("event payload must be a JSON object: %w", err)
	}
	if frame == nil {
		frame = map[string]json.RawMessage{}
	}
	resource, err := json.Marshal(string(key))
	if err != nil {
		return nil, err
	}
	frame["resource"] = resource
	return json.Marshal(frame)
}

// decodeEventResource extracts the routing resource from an inbound frame.
// Frames that are not JSON objects, or that lack a string "resource" field,
// are not an error to the connection; callers drop them.
func decodeEventResource(data []byte) (Key, error) {
	var frame struct {
		Resource string `json:"resource"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", err
	}
	if frame.Resource == "" {
		return "", errors.New("frame has no resource field")
	}
	return Key(frame.Resource), nil
}
