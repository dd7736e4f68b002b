package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tazhibayda/authflow/internal/notify"
)

type fakeDelivery struct {
	acked, nacked, requeue bool
}

func (f *fakeDelivery) Ack(bool) error { f.acked = true; return nil }
func (f *fakeDelivery) Nack(_ bool, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func body(t *testing.T, m notify.Message) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestProcess_AckOnSuccess(t *testing.T) {
	var got notify.Message
	h := DeliverTo(notify.SenderFunc(func(_ context.Context, m notify.Message) error {
		got = m
		return nil
	}))

	d := &fakeDelivery{}
	Process(context.Background(), d, body(t, notify.Message{Kind: notify.KindResetOTP, To: "a@x.com", OTP: "123456"}), h)

	assert.True(t, d.acked)
	assert.False(t, d.nacked)
	assert.Equal(t, "123456", got.OTP)
}

func TestProcess_RequeueOnSendFailure(t *testing.T) {
	h := DeliverTo(notify.SenderFunc(func(context.Context, notify.Message) error {
		return errors.New("smtp 451")
	}))

	d := &fakeDelivery{}
	Process(context.Background(), d, body(t, notify.Message{Kind: notify.KindWelcome, To: "a@x.com"}), h)

	assert.True(t, d.nacked)
	assert.True(t, d.requeue)
}

func TestProcess_DropsUndeliverable(t *testing.T) {
	h := DeliverTo(notify.SenderFunc(func(context.Context, notify.Message) error {
		return fmt.Errorf("%w: to: bad address", notify.ErrUndeliverable)
	}))

	d := &fakeDelivery{}
	Process(context.Background(), d, body(t, notify.Message{Kind: notify.KindWelcome, To: "a@@x.com"}), h)

	assert.True(t, d.acked)
	assert.False(t, d.nacked)
	assert.False(t, d.requeue)
}

func TestProcess_DropsPoison(t *testing.T) {
	called := false
	h := DeliverTo(notify.SenderFunc(func(context.Context, notify.Message) error {
		called = true
		return nil
	}))

	for _, b := range [][]byte{[]byte("{"), []byte(`{"kind":"welcome"}`)} {
		d := &fakeDelivery{}
		Process(context.Background(), d, b, h)
		assert.True(t, d.acked, "body %s", b)
		assert.False(t, d.nacked)
	}
	assert.False(t, called)
}

func TestRoutingKeyMatchesBinding(t *testing.T) {
	for _, k := range []notify.Kind{notify.KindWelcome, notify.KindVerifyOTP, notify.KindResetOTP} {
		assert.Equal(t, "notification."+string(k), RoutingKey(k))
	}
}
