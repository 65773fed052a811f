package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/models"
)

const queueName = "prediction_archive"

// Queue publishes archive events to RabbitMQ and runs the workers that drain
// them into the repository. Publishing is the pipeline's Archiver seam;
// persistence happens off the request path.
type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	repo    *Repository
	logger  *zap.Logger
}

func NewQueue(rabbitmqURL string, repo *Repository, logger *zap.Logger) (*Queue, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &Queue{
		conn:    conn,
		channel: channel,
		repo:    repo,
		logger:  logger,
	}, nil
}

// Record publishes one event as a persistent JSON message.
func (q *Queue) Record(ctx context.Context, event models.ArchiveEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal archive event: %w", err)
	}

	err = q.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish archive event: %w", err)
	}

	q.logger.Info("archive event published", zap.String("event_id", event.ID.String()))
	return nil
}

// Close shuts the channel and connection down.
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
