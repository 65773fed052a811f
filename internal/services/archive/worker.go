package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/brightstart/screening-api/internal/models"
)

// StartWorker consumes archive events and writes them to the repository.
// Malformed messages are dropped without requeue; repository failures requeue
// the delivery so a transient database outage loses nothing.
func (q *Queue) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		queueName,
		fmt.Sprintf("archive-worker-%d", workerID),
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	q.logger.Info("archive worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("archive worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("archive channel closed", zap.Int("worker_id", workerID))
					return
				}
				q.handleDelivery(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

func (q *Queue) handleDelivery(ctx context.Context, msg amqp.Delivery, workerID int) {
	var event models.ArchiveEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		q.logger.Error("failed to unmarshal archive event",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		msg.Nack(false, false)
		return
	}

	if err := q.repo.Insert(ctx, &event); err != nil {
		q.logger.Error("failed to persist prediction record",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
		msg.Nack(false, true)
		return
	}

	if err := msg.Ack(false); err != nil {
		q.logger.Error("failed to ack archive event",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
		return
	}

	q.logger.Info("prediction record stored",
		zap.String("event_id", event.ID.String()),
		zap.String("class", event.ResultClass))
}
