package nats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const SubjectPaymentVerified = "payment.verified"

type Bus struct {
	conn *nats.Conn
}

func Connect(url, name string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &Bus{conn: conn}, nil
}

func (b *Bus) Close() {
	if b != nil && b.conn != nil {
		b.conn.Drain()
	}
}

func (b *Bus) Publish(subject string, data []byte) error {
	if b == nil || b.conn == nil {
		return nats.ErrConnectionClosed
	}
	return b.conn.Publish(subject, data)
}

// PublishJSON encodes v and publishes it on subject.
func (b *Bus) PublishJSON(subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", subject, err)
	}
	return b.Publish(subject, data)
}

// QueueSubscribe delivers each message to one member of queue.
func (b *Bus) QueueSubscribe(subject, queue string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if b == nil || b.conn == nil {
		return nil, nats.ErrConnectionClosed
	}
	return b.conn.QueueSubscribe(subject, queue, handler)
}
