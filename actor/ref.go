package actor

import "strconv"

// Ref 位置无关的actor标识，同一个(Kind, Id)全局最多一个活动实例
type Ref struct {
	Kind string
	Id   string
}

func NewRef(kind, id string) Ref {
	return Ref{Kind: kind, Id: id}
}

func NewIntRef(kind string, id int64) Ref {
	return Ref{Kind: kind, Id: strconv.FormatInt(id, 10)}
}

func (r Ref) String() string {
	return r.Kind + ":" + r.Id
}

// IntId 整数键的kind用，解析失败返回0
func (r Ref) IntId() int64 {
	v, _ := strconv.ParseInt(r.Id, 10, 64)
	return v
}

// StateKey 持久化存储里的键
func (r Ref) StateKey() string {
	return r.Kind + "/" + r.Id
}
