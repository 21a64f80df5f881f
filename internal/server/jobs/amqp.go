package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/eastsecure/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel used by AMQPQueue.
type amqpChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// AMQPQueue keeps jobs in a durable RabbitMQ queue, so pending scans survive
// a restart. Deliveries are acknowledged after the handler returns.
type AMQPQueue struct {
	conn    io.Closer
	ch      amqpChannel
	queue   string
	workers int
	logger  logging.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAMQPQueue(url, queue string, workers int, l logging.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := newAMQPQueue(conn, ch, queue, workers, l)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return q, nil
}

func newAMQPQueue(conn io.Closer, ch amqpChannel, queue string, workers int, l logging.Logger) (*AMQPQueue, error) {
	if workers < 1 {
		workers = 1
	}
	if err := ch.Qos(workers, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, queue: queue, workers: workers, logger: l}, nil
}

func (q *AMQPQueue) Enqueue(ctx context.Context, job ScanJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (q *AMQPQueue) Start(ctx context.Context, h Handler) error {
	ctx, cancel := context.WithCancel(ctx)

	deliveries, err := q.ch.ConsumeWithContext(ctx, q.queue, "", false, false, false, false, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("consume %s: %w", q.queue, err)
	}
	q.cancel = cancel

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			q.work(ctx, worker, deliveries, h)
		}(i)
	}
	return nil
}

func (q *AMQPQueue) work(ctx context.Context, worker int, deliveries <-chan amqp.Delivery, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			q.handle(ctx, worker, d, h)
		}
	}
}

func (q *AMQPQueue) handle(ctx context.Context, worker int, d amqp.Delivery, h Handler) {
	var job ScanJob
	if err := json.Unmarshal(d.Body, &job); err != nil || job.ScanID == "" {
		q.logger.Warn(ctx, "dropping malformed scan job", "worker", worker, "body", string(d.Body))
		if err := d.Reject(false); err != nil {
			q.logger.Error(ctx, "reject failed", "error", err)
		}
		return
	}

	if err := h(context.WithoutCancel(ctx), job); err != nil {
		q.logger.Error(ctx, "scan job failed", "worker", worker, "scan_id", job.ScanID, "error", err)
	}
	if err := d.Ack(false); err != nil {
		q.logger.Error(ctx, "ack failed", "scan_id", job.ScanID, "error", err)
	}
}

// Close cancels the consumer, waits for in-flight handlers and then closes
// the channel and the connection.
func (q *AMQPQueue) Close() error {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()

	_ = q.ch.Close()
	return q.conn.Close()
}
