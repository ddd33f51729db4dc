package actor

// Behavior actor业务逻辑接口
// Receive在激活实例的单线程上下文里被逐条调用，actor内部状态不需要加锁
type Behavior interface {
	Receive(ctx *Context) (any, error)
}

// OnActivate实现可选，激活时在投递首条消息之前调用，一般用来加载持久化状态
type Activator interface {
	OnActivate(ctx *Context) error
}

// OnDeactivate实现可选，卸载前调用，定时器此时已全部取消
type Deactivator interface {
	OnDeactivate(ctx *Context)
}

// BehaviorFactory 每次激活创建一个新的Behavior实例
type BehaviorFactory func() Behavior

// TimerTick 定时器触发消息，通过activation自己的收件箱串行投递
type TimerTick struct {
	TimerId int64
}

// Observer 外部推送目标，由网关等外部组件注册进actor
// 推送是尽力而为的，失败由持有方记录日志，不往上传播
type Observer interface {
	Push(msgid uint16, payload []byte) error
}
