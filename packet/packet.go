package packet

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderLen 包头长度: 4字节包体长度 + 2字节消息ID，都是大端序
	HeaderLen = 6

	// DefaultBufferLen 每条连接的解码缓冲区默认容量
	DefaultBufferLen = 64 * 1024
)

var (
	ErrHeaderIncomplete = errors.New("gsgame: packet header incomplete")
	ErrBodyIncomplete   = errors.New("gsgame: packet body incomplete")
	ErrBodyLenInvalid   = errors.New("gsgame: packet body length exceeds buffer capacity")
	ErrBufferOverflow   = errors.New("gsgame: decoder buffer overflow")
)

// Frame 一个完整的消息帧
type Frame struct {
	MsgId uint16
	Body  []byte
}

// Encode 把消息体编码成完整帧: Length(4BE) + MsgId(2BE) + Body
func Encode(msgid uint16, body []byte) []byte {
	buf := make([]byte, HeaderLen+len(body))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(body)))
	binary.BigEndian.PutUint16(buf[4:6], msgid)
	copy(buf[HeaderLen:], body)
	return buf
}

// DecodeHeader 从buf头部解出包体长度和消息ID
func DecodeHeader(buf []byte) (bodyLen uint32, msgid uint16, err error) {
	if len(buf) < HeaderLen {
		return 0, 0, ErrHeaderIncomplete
	}
	bodyLen = binary.BigEndian.Uint32(buf[:4])
	msgid = binary.BigEndian.Uint16(buf[4:6])
	return bodyLen, msgid, nil
}

// Decode buf必须恰好是一个完整帧
func Decode(buf []byte) (Frame, error) {
	bodyLen, msgid, err := DecodeHeader(buf)
	if err != nil {
		return Frame{}, err
	}
	if uint32(len(buf)-HeaderLen) < bodyLen {
		return Frame{}, ErrBodyIncomplete
	}
	body := make([]byte, bodyLen)
	copy(body, buf[HeaderLen:HeaderLen+int(bodyLen)])
	return Frame{MsgId: msgid, Body: body}, nil
}
