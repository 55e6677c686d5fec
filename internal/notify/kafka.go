package notify

import (
	"context"
	"encoding/json"

	"github.com/Shopify/sarama"
)

// KafkaSender publishes each message as JSON to a topic, keyed by recipient.
type KafkaSender struct {
	topic string
	conn  sarama.SyncProducer
}

func NewKafkaSender(brokers []string, topic string) (*KafkaSender, error) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true
	conf.Producer.RequiredAcks = sarama.WaitForAll

	conn, err := sarama.NewSyncProducer(brokers, conf)
	if err != nil {
		return nil, err
	}
	return NewKafkaSenderWithProducer(conn, topic), nil
}

func NewKafkaSenderWithProducer(p sarama.SyncProducer, topic string) *KafkaSender {
	return &KafkaSender{topic: topic, conn: p}
}

// Send blocks until the broker acknowledges. sarama has no per-call
// context, so ctx is only checked before sending.
func (k *KafkaSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, _, err = k.conn.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(m.To),
		Value: sarama.ByteEncoder(b),
	})
	return err
}

func (k *KafkaSender) Close() error { return k.conn.Close() }
