package game

import (
	"fmt"

	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
	"github.com/pkg/errors"
)

// 订单状态
const (
	OrderStatusCreated   = 0
	OrderStatusPaid      = 1
	OrderStatusDelivered = 2
	OrderStatusFailed    = 3
)

// 支付actor的调用消息
type (
	// PaymentCreateOrder 回复*msg.S2COrderResult
	PaymentCreateOrder struct {
		PlayerId  int64
		ProductId string
	}
	// PaymentConfirm 支付回调确认，幂等，重复确认直接返回当前状态
	// Ok为false表示渠道侧支付失败，订单记为失败不发货
	PaymentConfirm struct {
		OrderId string
		Ok      bool
	}
	PaymentGetOrder struct {
		OrderId string
	}
)

type orderRecord struct {
	OrderId   string `msgpack:"order_id"`
	PlayerId  int64  `msgpack:"player_id"`
	ProductId string `msgpack:"product_id"`
	Status    int32  `msgpack:"status"`
	CreatedAt int64  `msgpack:"created_at"`
}

type paymentState struct {
	Orders map[string]*orderRecord `msgpack:"orders"`
}

type paymentActor struct {
	state   paymentState
	nextSeq int64
}

func newPaymentActor() actor.Behavior {
	return &paymentActor{}
}

func (p *paymentActor) OnActivate(ctx *actor.Context) error {
	if err := ctx.ReadState(&p.state); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if p.state.Orders == nil {
		p.state.Orders = make(map[string]*orderRecord)
	}
	return nil
}

func (p *paymentActor) Receive(ctx *actor.Context) (any, error) {
	switch m := ctx.Message.(type) {
	case PaymentCreateOrder:
		return p.createOrder(ctx, m)
	case PaymentConfirm:
		return p.confirm(ctx, m)
	case PaymentGetOrder:
		if o, ok := p.state.Orders[m.OrderId]; ok {
			return p.result(o), nil
		}
		return &msg.S2COrderResult{ErrorCode: msg.ErrCodeCommon}, nil
	}
	return nil, errors.Errorf("payment actor: unknown message %T", ctx.Message)
}

func (p *paymentActor) createOrder(ctx *actor.Context, m PaymentCreateOrder) (*msg.S2COrderResult, error) {
	if m.ProductId == "" {
		return &msg.S2COrderResult{ErrorCode: msg.ErrCodeInvalidParam}, nil
	}
	p.nextSeq++
	o := &orderRecord{
		OrderId:   fmt.Sprintf("ORD-%d-%d%03d", m.PlayerId, ctx.Now().UnixMilli(), p.nextSeq%1000),
		PlayerId:  m.PlayerId,
		ProductId: m.ProductId,
		Status:    OrderStatusCreated,
		CreatedAt: ctx.Now().UnixMilli(),
	}
	p.state.Orders[o.OrderId] = o
	// 订单必须落盘成功才算创建
	if err := ctx.WriteState(&p.state); err != nil {
		delete(p.state.Orders, o.OrderId)
		gsgame.GetLogger().Errorf("payment: persist order %v failed: %v", o.OrderId, err)
		return &msg.S2COrderResult{ErrorCode: msg.ErrCodeCommon}, nil
	}
	gsgame.GetLogger().Infof("payment: order %v created for player %v product %v",
		o.OrderId, m.PlayerId, m.ProductId)
	return p.result(o), nil
}

func (p *paymentActor) confirm(ctx *actor.Context, m PaymentConfirm) (*msg.S2COrderResult, error) {
	orderId := m.OrderId
	o, ok := p.state.Orders[orderId]
	if !ok {
		return &msg.S2COrderResult{ErrorCode: msg.ErrCodeCommon}, nil
	}
	if o.Status != OrderStatusCreated {
		return p.result(o), nil
	}
	if !m.Ok {
		o.Status = OrderStatusFailed
		if err := ctx.WriteState(&p.state); err != nil {
			gsgame.GetLogger().Errorf("payment: persist order %v failure failed: %v", orderId, err)
		}
		return p.result(o), nil
	}
	o.Status = OrderStatusPaid
	if err := ctx.WriteState(&p.state); err != nil {
		o.Status = OrderStatusCreated
		gsgame.GetLogger().Errorf("payment: persist order %v confirm failed: %v", orderId, err)
		return &msg.S2COrderResult{ErrorCode: msg.ErrCodeCommon}, nil
	}

	// 发货走玩家actor，失败只记日志，靠后续对账补发
	if err := ctx.Send(PlayerRef(o.PlayerId), PlayerAddItem{ItemId: productItemId(o.ProductId), Count: 1}); err != nil {
		gsgame.GetLogger().Errorf("payment: deliver order %v to player %v failed: %v", orderId, o.PlayerId, err)
	} else {
		o.Status = OrderStatusDelivered
		if err = ctx.WriteState(&p.state); err != nil {
			gsgame.GetLogger().Errorf("payment: persist order %v delivery failed: %v", orderId, err)
		}
	}
	return p.result(o), nil
}

func (p *paymentActor) result(o *orderRecord) *msg.S2COrderResult {
	return &msg.S2COrderResult{
		ErrorCode: msg.ErrCodeSuccess,
		OrderId:   o.OrderId,
		ProductId: o.ProductId,
		Status:    o.Status,
	}
}

// productItemId 商品到道具的静态映射，未知商品发默认礼包
func productItemId(productId string) int32 {
	switch productId {
	case "gold_100":
		return 1001
	case "gift_pack":
		return 2001
	}
	return 3001
}
