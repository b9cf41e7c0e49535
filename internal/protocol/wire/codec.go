package wire

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	SubprotocolJSON = "boarbot.v1+json"
	SubprotocolCBOR = "boarbot.v1+cbor"
)

// Codec serializes envelopes and payloads for one subprotocol.
type Codec interface {
	// Name is the configuration name of the codec ("json" or "cbor").
	Name() string
	Subprotocol() string
	// Binary reports whether frames are sent as binary websocket messages.
	Binary() bool

	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	EncodeEnvelope(env Envelope) ([]byte, error)
	DecodeEnvelope(data []byte) (Envelope, error)
}

var (
	JSON Codec = jsonCodec{}
	CBOR Codec = cborCodec{}
)

// Codecs lists the supported codecs in order of preference.
func Codecs() []Codec { return []Codec{JSON, CBOR} }

// Subprotocols returns the subprotocol names of all codecs.
func Subprotocols() []string {
	out := make([]string, 0, 2)
	for _, c := range Codecs() {
		out = append(out, c.Subprotocol())
	}
	return out
}

// ByName returns the codec configured as name.
func ByName(name string) (Codec, error) {
	for _, c := range Codecs() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("wire: unknown codec %q", name)
}

// BySubprotocol returns the codec negotiated as subprotocol. The empty
// subprotocol selects JSON.
func BySubprotocol(subprotocol string) (Codec, error) {
	if subprotocol == "" {
		return JSON, nil
	}
	for _, c := range Codecs() {
		if c.Subprotocol() == subprotocol {
			return c, nil
		}
	}
	return nil, fmt.Errorf("wire: unknown subprotocol %q", subprotocol)
}

type jsonEnvelope struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string        { return "json" }
func (jsonCodec) Subprotocol() string { return SubprotocolJSON }
func (jsonCodec) Binary() bool        { return false }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) EncodeEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(jsonEnvelope{
		V: env.V, Type: env.Type, ID: env.ID, TS: env.TS, Payload: env.Payload,
	})
}

func (jsonCodec) DecodeEnvelope(data []byte) (Envelope, error) {
	var je jsonEnvelope
	if err := json.Unmarshal(data, &je); err != nil {
		return Envelope{}, err
	}
	return Envelope{V: je.V, Type: je.Type, ID: je.ID, TS: je.TS, Payload: je.Payload}, nil
}

// cborEnvelope uses integer keys to keep frames small.
type cborEnvelope struct {
	V       int             `cbor:"1,keyasint"`
	Type    string          `cbor:"2,keyasint"`
	ID      string          `cbor:"3,keyasint"`
	TS      time.Time       `cbor:"4,keyasint"`
	Payload cbor.RawMessage `cbor:"5,keyasint"`
}

// Core Deterministic Encoding (RFC 8949 §4.2): the same logical value always
// produces identical bytes. Timestamps are RFC 3339 strings.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	cborEnc, err = opts.EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborCodec struct{}

func (cborCodec) Name() string        { return "cbor" }
func (cborCodec) Subprotocol() string { return SubprotocolCBOR }
func (cborCodec) Binary() bool        { return true }

func (cborCodec) Marshal(v any) ([]byte, error) { return cborEnc.Marshal(v) }

func (cborCodec) Unmarshal(data []byte, v any) error { return cborDec.Unmarshal(data, v) }

func (cborCodec) EncodeEnvelope(env Envelope) ([]byte, error) {
	return cborEnc.Marshal(cborEnvelope{
		V: env.V, Type: env.Type, ID: env.ID, TS: env.TS, Payload: env.Payload,
	})
}

func (cborCodec) DecodeEnvelope(data []byte) (Envelope, error) {
	var ce cborEnvelope
	if err := cborDec.Unmarshal(data, &ce); err != nil {
		return Envelope{}, err
	}
	return Envelope{V: ce.V, Type: ce.Type, ID: ce.ID, TS: ce.TS, Payload: ce.Payload}, nil
}
