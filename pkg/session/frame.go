package session

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// envelope is the wire shape of every message in both directions: a
// message type tag plus an arbitrary payload, per spec §4.6/§6.
type envelope struct {
	Type string                 `msgpack:"type" json:"type"`
	Data map[string]interface{} `msgpack:"data" json:"data"`
}

// encodeFrame renders an outbound message as binary msgpack; the client
// is never sent JSON, per spec §6.
func encodeFrame(msgType string, data interface{}) ([]byte, error) {
	fields, err := toFieldMap(data)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(envelope{Type: msgType, Data: fields})
}

// toFieldMap round-trips data through msgpack into a plain map so typed
// payload structs (snapshotPayload, CharacterSummary, ...) serialize the
// same way a hand-built map would.
func toFieldMap(data interface{}) (map[string]interface{}, error) {
	if data == nil {
		return nil, nil
	}
	if m, ok := data.(map[string]interface{}); ok {
		return m, nil
	}
	raw, err := msgpack.Marshal(data)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeFrame parses an inbound client message. The client is expected to
// send msgpack; a JSON payload (leading '{') is accepted as a fallback so
// a plain browser WebSocket client can talk to the server too, per
// spec §4.6.
func decodeFrame(raw []byte) (msgType string, data map[string]interface{}, err error) {
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &env); err != nil {
			return "", nil, fmt.Errorf("invalid json frame: %w", err)
		}
	} else {
		if err := msgpack.Unmarshal(raw, &env); err != nil {
			return "", nil, fmt.Errorf("invalid msgpack frame: %w", err)
		}
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("frame missing type")
	}
	if env.Data == nil {
		env.Data = map[string]interface{}{}
	}
	return env.Type, env.Data, nil
}
