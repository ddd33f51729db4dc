package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"msgpack", "json", "gob", "protobuf", "thrift"} {
		c := Get(name)
		require.NotNil(t, c, name)
		assert.Equal(t, name, c.Name())
	}
	assert.Nil(t, Get("unknown"))
}

type codecPayload struct {
	Id   int64  `msgpack:"id"`
	Name string `msgpack:"name"`
}

func TestRoundTrip(t *testing.T) {
	in := &codecPayload{Id: 42, Name: "gsgame"}
	for _, name := range []string{"msgpack", "json", "gob"} {
		c := Get(name)
		data, err := c.Encode(in)
		require.NoError(t, err, name)

		out := &codecPayload{}
		require.NoError(t, c.Decode(data, out), name)
		assert.Equal(t, in, out, name)
	}
}

func TestProtobufRequiresProtoMessage(t *testing.T) {
	c := NewProtobufCodec()
	_, err := c.Encode(&codecPayload{})
	assert.ErrorIs(t, err, ErrNotProtobufMessage)
	assert.ErrorIs(t, c.Decode(nil, &codecPayload{}), ErrNotProtobufMessage)
}
