package codec

// ICodec 消息体编解码接口
type ICodec interface {
	Encode(i any) ([]byte, error)
	Decode(d []byte, i any) error
	Name() string
}

// Get 按名字取编解码器，未知名字返回nil
func Get(name string) ICodec {
	switch name {
	case "msgpack":
		return NewMsgpackCodec()
	case "json":
		return NewJsonCodec()
	case "gob":
		return NewGobCodec()
	case "protobuf":
		return NewProtobufCodec()
	case "thrift":
		return NewThriftCodec()
	}
	return nil
}
