package game

import (
	"testing"

	"github.com/huoshan017/gsgame/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCreateOrder(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())
	ref := PaymentRef("default")

	res, err := rt.Request(ref, PaymentCreateOrder{PlayerId: 1, ProductId: "gold_100"})
	require.NoError(t, err)
	order := res.(*msg.S2COrderResult)
	require.Equal(t, int32(msg.ErrCodeSuccess), order.ErrorCode)
	assert.NotEmpty(t, order.OrderId)
	assert.Equal(t, "gold_100", order.ProductId)
	assert.Equal(t, int32(OrderStatusCreated), order.Status)

	res, err = rt.Request(ref, PaymentGetOrder{OrderId: order.OrderId})
	require.NoError(t, err)
	assert.Equal(t, order.OrderId, res.(*msg.S2COrderResult).OrderId)
}

func TestPaymentCreateOrderInvalidProduct(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())

	res, err := rt.Request(PaymentRef("default"), PaymentCreateOrder{PlayerId: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(msg.ErrCodeInvalidParam), res.(*msg.S2COrderResult).ErrorCode)
}

// 确认后发货到玩家背包，重复确认幂等
func TestPaymentConfirmDelivers(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())
	ref := PaymentRef("default")

	res, err := rt.Request(ref, PaymentCreateOrder{PlayerId: 9, ProductId: "gift_pack"})
	require.NoError(t, err)
	orderId := res.(*msg.S2COrderResult).OrderId

	res, err = rt.Request(ref, PaymentConfirm{OrderId: orderId, Ok: true})
	require.NoError(t, err)
	confirmed := res.(*msg.S2COrderResult)
	assert.Equal(t, int32(OrderStatusDelivered), confirmed.Status)

	// 重复确认不再发货
	res, err = rt.Request(ref, PaymentConfirm{OrderId: orderId, Ok: true})
	require.NoError(t, err)
	assert.Equal(t, int32(OrderStatusDelivered), res.(*msg.S2COrderResult).Status)

	res, err = rt.Request(PlayerRef(9), PlayerGetBag{})
	require.NoError(t, err)
	var count int32
	for _, it := range res.(*msg.S2CBagInfo).Items {
		if it.ItemId == 2001 {
			count = it.Count
		}
	}
	assert.Equal(t, int32(1), count)
}

func TestPaymentConfirmFailed(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())
	ref := PaymentRef("default")

	res, err := rt.Request(ref, PaymentCreateOrder{PlayerId: 3, ProductId: "gold_100"})
	require.NoError(t, err)
	orderId := res.(*msg.S2COrderResult).OrderId

	// 渠道侧失败，订单记失败，不发货
	res, err = rt.Request(ref, PaymentConfirm{OrderId: orderId, Ok: false})
	require.NoError(t, err)
	assert.Equal(t, int32(OrderStatusFailed), res.(*msg.S2COrderResult).Status)

	res, err = rt.Request(PlayerRef(3), PlayerGetBag{})
	require.NoError(t, err)
	assert.Empty(t, res.(*msg.S2CBagInfo).Items)
}

func TestPaymentConfirmUnknownOrder(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())

	res, err := rt.Request(PaymentRef("default"), PaymentConfirm{OrderId: "ORD-none", Ok: true})
	require.NoError(t, err)
	assert.Equal(t, int32(msg.ErrCodeCommon), res.(*msg.S2COrderResult).ErrorCode)
}
