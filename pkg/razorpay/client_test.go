package razorpay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rxcart-backend/pkg/config"
)

type fakeOrders struct {
	created map[string]interface{}
	fetch   map[string]interface{}
	err     error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.created = data
	if f.err != nil {
		return nil, f.err
	}
	return map[string]interface{}{"id": "order_abc", "amount": data["amount"]}, nil
}

func (f *fakeOrders) Fetch(orderID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fetch, nil
}

func TestNewRequiresKeys(t *testing.T) {
	_, err := New(config.RazorpayConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := New(config.RazorpayConfig{KeyID: "rzp_test", KeySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "rzp_test", c.KeyID())
}

func TestCreateIntent(t *testing.T) {
	orders := &fakeOrders{}
	c := &Client{orders: orders, keyID: "rzp_test", secret: "s"}

	intent, err := c.CreateIntent(context.Background(), 8500, "INR", "rcpt-1", map[string]string{"user_id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", intent.ID)
	assert.Equal(t, int64(8500), intent.AmountMinor)
	assert.Equal(t, "rzp_test", intent.KeyID)
	assert.Equal(t, int64(8500), orders.created["amount"])
	assert.Equal(t, map[string]interface{}{"user_id": "u1"}, orders.created["notes"])

	_, err = c.CreateIntent(context.Background(), 0, "INR", "rcpt", nil)
	assert.Error(t, err)

	orders.err = errors.New("bad request")
	_, err = c.CreateIntent(context.Background(), 100, "INR", "rcpt", nil)
	assert.Error(t, err)
}

func TestFetchNotes(t *testing.T) {
	orders := &fakeOrders{fetch: map[string]interface{}{
		"id":    "order_abc",
		"notes": map[string]interface{}{"user_id": "u1", "checkout_data": `{"payment_method":"online"}`},
	}}
	c := &Client{orders: orders, secret: "s"}

	notes, err := c.FetchNotes(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", notes["user_id"])
	assert.Contains(t, notes["checkout_data"], "online")

	orders.fetch = map[string]interface{}{"notes": []interface{}{}}
	notes, err = c.FetchNotes(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = c.FetchNotes(context.Background(), "")
	assert.Error(t, err)
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := &Client{secret: "shh"}
	sig := Sign("shh", "order_1", "pay_1")

	assert.True(t, c.VerifyPaymentSignature("order_1", "pay_1", sig))
	assert.False(t, c.VerifyPaymentSignature("order_1", "pay_2", sig))
	assert.False(t, c.VerifyPaymentSignature("order_1", "pay_1", "zz"))
	assert.False(t, c.VerifyPaymentSignature("order_1", "pay_1", Sign("other", "order_1", "pay_1")))
	assert.False(t, c.VerifyPaymentSignature("", "pay_1", sig))
	assert.False(t, c.VerifyPaymentSignature("order_1", "", sig))
	assert.False(t, c.VerifyPaymentSignature("order_1", "pay_1", ""))

	unconfigured := &Client{}
	assert.False(t, unconfigured.VerifyPaymentSignature("order_1", "pay_1", Sign("", "order_1", "pay_1")))
}

func TestVerifySignatureMatchesCallbackPayload(t *testing.T) {
	// the signed payload is "order_id|payment_id"; swapping the ids must not verify
	sig := Sign("shh", "order_9", "pay_9")
	assert.True(t, VerifySignature("shh", "order_9", "pay_9", sig))
	assert.False(t, VerifySignature("shh", "pay_9", "order_9", sig))
}
