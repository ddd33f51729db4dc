package msg

import (
	"fmt"

	"github.com/huoshan017/gsgame/msg/codec"
	"github.com/huoshan017/gsgame/packet"
)

var defaultCodec codec.ICodec = codec.NewMsgpackCodec()

// SetCodec 切换消息体编解码器，只应在进程初始化时调用
func SetCodec(name string) error {
	c := codec.Get(name)
	if c == nil {
		return fmt.Errorf("gsgame: no codec named %v", name)
	}
	defaultCodec = c
	return nil
}

func GetCodec() codec.ICodec {
	return defaultCodec
}

// Encode 编码消息体，返回消息ID和编码后的数据
func Encode(m any) (MsgIdType, []byte, error) {
	id, o := defaultMapper.GetId(m)
	if !o {
		return 0, nil, fmt.Errorf("gsgame: message type %T not registered", m)
	}
	body, err := defaultCodec.Encode(m)
	if err != nil {
		return 0, nil, err
	}
	return id, body, nil
}

// Decode 根据消息ID解码出强类型消息对象
func Decode(id MsgIdType, body []byte) (any, error) {
	m := defaultMapper.GetReflectNewObject(id)
	if m == nil {
		return nil, ErrUnknownMsgId(id)
	}
	if err := defaultCodec.Decode(body, m); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeFrame 编码成完整的线上帧: 包头 + 消息体
func EncodeFrame(m any) ([]byte, error) {
	id, body, err := Encode(m)
	if err != nil {
		return nil, err
	}
	return packet.Encode(uint16(id), body), nil
}

// DecodeFrame frame必须是恰好一个完整帧
func DecodeFrame(frame []byte) (MsgIdType, any, error) {
	f, err := packet.Decode(frame)
	if err != nil {
		return 0, nil, err
	}
	m, err := Decode(MsgIdType(f.MsgId), f.Body)
	if err != nil {
		return 0, nil, err
	}
	return MsgIdType(f.MsgId), m, nil
}
