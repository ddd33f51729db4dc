package msg

import (
	"fmt"
	"reflect"
)

var ErrUnknownMsgId = func(msgid MsgIdType) error {
	return fmt.Errorf("gsgame: unknown message id %v", msgid)
}

// IdMsgMapper 消息ID与消息类型的双向映射表
// 进程启动时构建一次，之后只读
type IdMsgMapper struct {
	idToType map[MsgIdType]reflect.Type
	typeToId map[reflect.Type]MsgIdType
}

func CreateIdMsgMapper() *IdMsgMapper {
	return &IdMsgMapper{
		idToType: make(map[MsgIdType]reflect.Type),
		typeToId: make(map[reflect.Type]MsgIdType),
	}
}

// AddMap id和类型重复注册直接panic，协议表是闭合的
func (ma *IdMsgMapper) AddMap(id MsgIdType, m any) {
	rt := reflect.TypeOf(m)
	if _, o := ma.idToType[id]; o {
		panic(fmt.Sprintf("gsgame: message id %v registered twice", id))
	}
	if _, o := ma.typeToId[rt]; o {
		panic(fmt.Sprintf("gsgame: message type %v registered twice", rt))
	}
	ma.idToType[id] = rt
	ma.typeToId[rt] = id
}

// GetReflectNewObject 根据ID创建一个新的消息对象，未注册返回nil
func (ma *IdMsgMapper) GetReflectNewObject(id MsgIdType) any {
	rt, o := ma.idToType[id]
	if !o {
		return nil
	}
	return reflect.New(rt.Elem()).Interface()
}

// GetId 根据消息对象的类型取ID
func (ma *IdMsgMapper) GetId(m any) (MsgIdType, bool) {
	id, o := ma.typeToId[reflect.TypeOf(m)]
	return id, o
}

var defaultMapper = createDefaultMapper()

func createDefaultMapper() *IdMsgMapper {
	ma := CreateIdMsgMapper()
	ma.AddMap(MsgIdC2SLogin, &C2SLogin{})
	ma.AddMap(MsgIdS2CLogin, &S2CLogin{})
	ma.AddMap(MsgIdC2SEnterRoom, &C2SEnterRoom{})
	ma.AddMap(MsgIdS2CEnterRoom, &S2CEnterRoom{})
	ma.AddMap(MsgIdC2SPlayerAction, &C2SPlayerAction{})
	ma.AddMap(MsgIdS2CPlayerAction, &S2CPlayerAction{})
	ma.AddMap(MsgIdS2CPlayerInfo, &S2CPlayerInfo{})
	ma.AddMap(MsgIdS2CBagInfo, &S2CBagInfo{})
	ma.AddMap(MsgIdS2CFrameData, &S2CFrameData{})
	ma.AddMap(MsgIdC2SRequestMatch, &C2SRequestMatch{})
	ma.AddMap(MsgIdS2CMatchResult, &S2CMatchResult{})
	ma.AddMap(MsgIdC2SSendChat, &C2SSendChat{})
	ma.AddMap(MsgIdS2CChatMessage, &S2CChatMessage{})
	ma.AddMap(MsgIdC2SGetRank, &C2SGetRank{})
	ma.AddMap(MsgIdS2CRankList, &S2CRankList{})
	ma.AddMap(MsgIdC2SCreateOrder, &C2SCreateOrder{})
	ma.AddMap(MsgIdS2COrderResult, &S2COrderResult{})
	ma.AddMap(MsgIdC2SHeartbeat, &C2SHeartbeat{})
	ma.AddMap(MsgIdS2CHeartbeat, &S2CHeartbeat{})
	return ma
}

// GetDefaultMapper 默认协议表
func GetDefaultMapper() *IdMsgMapper {
	return defaultMapper
}
