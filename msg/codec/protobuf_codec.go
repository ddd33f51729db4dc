package codec

import (
	"errors"

	"github.com/gogo/protobuf/proto"
)

var ErrNotProtobufMessage = errors.New("gsgame: object does not implement proto.Message")

type ProtobufCodec struct{}

func NewProtobufCodec() *ProtobufCodec {
	return &ProtobufCodec{}
}

func (c *ProtobufCodec) Encode(i any) ([]byte, error) {
	m, o := i.(proto.Message)
	if !o {
		return nil, ErrNotProtobufMessage
	}
	return proto.Marshal(m)
}

func (c *ProtobufCodec) Decode(d []byte, i any) error {
	m, o := i.(proto.Message)
	if !o {
		return ErrNotProtobufMessage
	}
	return proto.Unmarshal(d, m)
}

func (c *ProtobufCodec) Name() string {
	return "protobuf"
}
