package nats

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestClosedBusRefusesTraffic(t *testing.T) {
	var b *Bus
	assert.ErrorIs(t, b.Publish(SubjectPaymentVerified, []byte("{}")), nats.ErrConnectionClosed)

	_, err := (&Bus{}).QueueSubscribe(SubjectPaymentVerified, "ledger", func(*nats.Msg) {})
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
}

func TestPublishJSONRejectsUnencodable(t *testing.T) {
	err := (&Bus{}).PublishJSON(SubjectPaymentVerified, make(chan int))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "encode payment.verified")
}
