package wire_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boarbot/internal/domain"
	"boarbot/internal/protocol/wire"
)

var ts = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestEnvelope_RoundTripBothCodecs(t *testing.T) {
	for _, c := range wire.Codecs() {
		t.Run(c.Name(), func(t *testing.T) {
			in := wire.QRCodeQueryPayload{Sig: []byte{0, 1, 2, 0xff}}
			data, err := wire.Encode(c, wire.TypeQRCodeQuery, "01HX", ts, in)
			require.NoError(t, err)

			env, err := wire.Decode(c, data)
			require.NoError(t, err)
			assert.Equal(t, wire.Version, env.V)
			assert.Equal(t, wire.TypeQRCodeQuery, env.Type)
			assert.Equal(t, "01HX", env.ID)
			assert.True(t, ts.Equal(env.TS))

			var out wire.QRCodeQueryPayload
			require.NoError(t, wire.DecodePayload(c, env, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCBOR_IsDeterministic(t *testing.T) {
	p := wire.FriendListPayload{Friends: []domain.Friend{{UIN: 1, Nick: "a"}, {UIN: 2, Nick: "b"}}}
	a, err := wire.Encode(wire.CBOR, wire.TypeFriendList, "id", ts, p)
	require.NoError(t, err)
	b, err := wire.Encode(wire.CBOR, wire.TypeFriendList, "id", ts, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidate(t *testing.T) {
	good := wire.Envelope{V: wire.Version, Type: wire.TypeOK, ID: "x", TS: ts, Payload: []byte("{}")}
	require.NoError(t, good.Validate())

	cases := map[string]func(e *wire.Envelope){
		"version": func(e *wire.Envelope) { e.V = 2 },
		"type":    func(e *wire.Envelope) { e.Type = "" },
		"unknown": func(e *wire.Envelope) { e.Type = "nope" },
		"id":      func(e *wire.Envelope) { e.ID = "" },
		"ts":      func(e *wire.Envelope) { e.TS = time.Time{} },
		"payload": func(e *wire.Envelope) { e.Payload = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := good
			mutate(&e)
			assert.Error(t, e.Validate())
		})
	}
}

func TestDecode_RejectsWrongVersion(t *testing.T) {
	data, err := wire.JSON.EncodeEnvelope(wire.Envelope{V: 9, Type: wire.TypeOK, ID: "x", TS: ts, Payload: []byte("{}")})
	require.NoError(t, err)

	_, err = wire.Decode(wire.JSON, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestEventPayload_AllKinds(t *testing.T) {
	events := []domain.Event{
		domain.FriendMessage{Seq: 1, From: 10, Elements: domain.MessageChain{{Type: domain.ElementText, Text: "hi"}}},
		domain.GroupMessage{Seq: 2, GroupCode: 20, From: 10},
		domain.GroupTempMessage{Seq: 3, GroupCode: 20, From: 11},
		domain.GroupRequest{MsgSeq: 4, GroupCode: 20, ReqUIN: 12, Message: "join"},
		domain.FriendRequest{MsgSeq: 5, ReqUIN: 13, Message: "add"},
		domain.UnknownEvent{Type: "poke", Raw: []byte{1}},
	}
	for _, c := range wire.Codecs() {
		for _, ev := range events {
			t.Run(c.Name()+"/"+string(ev.Kind()), func(t *testing.T) {
				data, err := wire.Encode(c, wire.TypeEvent, "e", ts, wire.NewEventPayload(ev))
				require.NoError(t, err)
				env, err := wire.Decode(c, data)
				require.NoError(t, err)

				var p wire.EventPayload
				require.NoError(t, wire.DecodePayload(c, env, &p))
				assert.Equal(t, ev, p.Event())
			})
		}
	}
}

func TestEventPayload_MismatchedKindIsUnknown(t *testing.T) {
	p := wire.EventPayload{Kind: domain.EventGroupMessage}
	assert.Equal(t, domain.UnknownEvent{Type: "group_message"}, p.Event())
}

func TestLookup(t *testing.T) {
	c, err := wire.ByName("cbor")
	require.NoError(t, err)
	assert.Equal(t, wire.SubprotocolCBOR, c.Subprotocol())

	c, err = wire.BySubprotocol("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = wire.ByName("xml")
	assert.Error(t, err)
	_, err = wire.BySubprotocol("boarbot.v2+json")
	assert.Error(t, err)

	assert.Equal(t, []string{wire.SubprotocolJSON, wire.SubprotocolCBOR}, wire.Subprotocols())
}
