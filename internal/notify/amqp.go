package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/edunest/admin-ledger/internal/logging"
)

const publishTimeout = 5 * time.Second

// Publisher pushes notification events onto a RabbitMQ queue so other
// dashboard channels (email digests, the activity feed) can consume
// them. The queue is durable and messages are persistent; a broker
// restart loses nothing already accepted.
type Publisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	now          func() time.Time
}

func NewPublisher(url, exchangeName, queueName string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("NewPublisher: dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("NewPublisher: open channel: %w", err)
	}

	p := &Publisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		now:          time.Now,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("NewPublisher: %w", err)
	}
	return p, nil
}

func (p *Publisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key matches the queue name on a direct exchange
	err = p.channel.QueueBind(p.queueName, p.queueName, p.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *Publisher) Success(ctx context.Context, message string) {
	p.publish(ctx, Event{Level: LevelSuccess, Message: message, At: p.now()})
}

func (p *Publisher) Error(ctx context.Context, message string) {
	p.publish(ctx, Event{Level: LevelError, Message: message, At: p.now()})
}

func (p *Publisher) publish(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		logging.FromContext(ctx).Error("marshal notification", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		p.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.At,
			Body:         body,
		},
	)
	if err != nil {
		// notifications never fail the operation that produced them
		logging.FromContext(ctx).Error("publish notification",
			"exchange", p.exchangeName,
			"queue", p.queueName,
			"error", err,
		)
	}
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
