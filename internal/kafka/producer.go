package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget; the engine never awaits delivery
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is cancelled, then drains whatever is
// still queued before closing the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-p.inbox:
						_ = p.w.WriteMessages(context.Background(), m)
					default:
						_ = p.w.Close()
						close(p.closeCh)
						return
					}
				}
			case m := <-p.inbox:
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("kafka publish: %v", err)
				}
			}
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// WaitClosed blocks until the flush loop has drained and exited. Cancel the
// Start context first.
func (p *Producer) WaitClosed() { <-p.closeCh }
