package rabbitmq

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
)

// ConsumerMessage создает потребителя сообщений из очереди RabbitMQ.
// Обработка сообщений идёт параллельно, но не более 10 одновременно.
// Сообщение подтверждается после успешной обработки, при ошибке
// возвращается в очередь.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(m amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(m.Body); err != nil {
						_ = m.Nack(false, true)
						return
					}
					_ = m.Ack(false)
				}(msg)
			}
		}
	}()
	return nil
}
