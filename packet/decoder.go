package packet

// Decoder TCP粘包/拆包处理器，每条连接一个实例
// 新收到的数据追加到缓冲区，循环解析出完整帧，剩余数据移到缓冲区头部
type Decoder struct {
	buf      []byte
	writePos int
}

func NewDecoder() *Decoder {
	return NewDecoderWithCap(DefaultBufferLen)
}

func NewDecoderWithCap(capacity int) *Decoder {
	if capacity < HeaderLen {
		capacity = DefaultBufferLen
	}
	return &Decoder{
		buf: make([]byte, capacity),
	}
}

// Feed 追加数据并返回所有解析出的完整帧
// 返回ErrBodyLenInvalid或ErrBufferOverflow时连接必须关闭，解码器不再可用
func (d *Decoder) Feed(data []byte) ([]Frame, error) {
	if d.writePos+len(data) > len(d.buf) {
		return nil, ErrBufferOverflow
	}
	copy(d.buf[d.writePos:], data)
	d.writePos += len(data)

	var frames []Frame
	readPos := 0
	for {
		remaining := d.writePos - readPos
		if remaining < HeaderLen {
			break
		}

		bodyLen, msgid, _ := DecodeHeader(d.buf[readPos:])
		total := HeaderLen + int(bodyLen)
		if total > len(d.buf) {
			// 单帧超过缓冲区容量，永远不可能收齐
			return frames, ErrBodyLenInvalid
		}
		if remaining < total {
			break
		}

		body := make([]byte, bodyLen)
		copy(body, d.buf[readPos+HeaderLen:readPos+total])
		frames = append(frames, Frame{MsgId: msgid, Body: body})
		readPos += total
	}

	// 未解析完的数据移到缓冲区头部
	if readPos > 0 {
		leftover := d.writePos - readPos
		copy(d.buf, d.buf[readPos:d.writePos])
		d.writePos = leftover
	}

	return frames, nil
}

// Pending 缓冲区中尚未构成完整帧的字节数
func (d *Decoder) Pending() int {
	return d.writePos
}

func (d *Decoder) Reset() {
	d.writePos = 0
}
